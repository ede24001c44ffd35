// Package sqlpatch builds the SET clause of partial updates.
//
// A Patch only lists the fields a caller supplied. Build maps each of them to its storage column through
// a fixed mapping, so that column names never originate from request data, and numbers the placeholders
// in patch order:
//
//	patch := sqlpatch.Patch{}
//	patch.Set("firstName", "Ada")
//	patch.Set("email", "ada@example.com")
//	a, _ := sqlpatch.Build(patch, map[string]string{"firstName": "first_name", "email": "email"})
//	// a.SetCols == `first_name = $1, email = $2`
//	// a.Values  == []any{"Ada", "ada@example.com"}
//	// a.Next()  == "$3"
package sqlpatch

import (
	"fmt"
	"strings"

	"github.com/silktrader/onair/pkg/failure"
)

// Field is a single requested change.
type Field struct {
	Name  string
	Value any
}

// Patch is an ordered list of requested changes.
type Patch []Field

// Set appends a change, or replaces the value of a field already present without moving it.
func (p *Patch) Set(name string, value any) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Field{name, value})
}

func (p Patch) Get(name string) (any, bool) {
	for _, f := range p {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Assignments is the result of Build: a SET clause and the values bound to its placeholders.
type Assignments struct {
	SetCols string
	Values  []any
}

// Next returns the first placeholder following the assignments, meant for the WHERE clause.
func (a Assignments) Next() string {
	return placeholder(len(a.Values) + 1)
}

// Args returns the assignment values followed by the extra arguments.
func (a Assignments) Args(extra ...any) []any {
	args := make([]any, 0, len(a.Values)+len(extra))
	args = append(args, a.Values...)
	return append(args, extra...)
}

// Build produces the SET clause for the patch. It fails with a bad request when the patch is empty or
// names a field missing from columns.
func Build(patch Patch, columns map[string]string) (Assignments, error) {
	if len(patch) == 0 {
		return Assignments{}, failure.BadRequest("No data")
	}

	var (
		cols   = make([]string, 0, len(patch))
		values = make([]any, 0, len(patch))
	)
	for _, field := range patch {
		column, known := columns[field.Name]
		if !known {
			return Assignments{}, failure.BadRequest("Unknown field: %s", field.Name)
		}
		values = append(values, field.Value)
		cols = append(cols, fmt.Sprintf("%s = %s", column, placeholder(len(values))))
	}

	return Assignments{SetCols: strings.Join(cols, ", "), Values: values}, nil
}

func placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}
