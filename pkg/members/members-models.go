package members

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/silktrader/onair/pkg/sqlpatch"
)

var usernameRules = []validation.Rule{validation.Required, validation.Length(1, 30), is.PrintableASCII}
var passwordRules = []validation.Rule{validation.Required, validation.Length(5, 72)}
var nameRules = []validation.Rule{validation.Length(0, 30)}

// Member is the public view of a member; the password hash never leaves the repository.
type Member struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	IsDJ      bool   `db:"is_dj" json:"isDJ"`
	IsAdmin   bool   `db:"is_admin" json:"isAdmin"`
	Donated   bool   `db:"donated" json:"donated"`
}

// Details is a member along with the show they host, if any.
type Details struct {
	Member
	ShowID *int64 `json:"showID"`
}

type credentials struct {
	Member
	Password string `db:"password"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (data Credentials) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, usernameRules...),
		validation.Field(&data.Password, passwordRules...),
	)
}

// RegisterData is what admins submit to add members, possibly granting roles.
type RegisterData struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsDJ      bool   `json:"isDJ"`
	IsAdmin   bool   `json:"isAdmin"`
	Donated   bool   `json:"donated"`
}

func (data RegisterData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, usernameRules...),
		validation.Field(&data.Password, passwordRules...),
		validation.Field(&data.FirstName, nameRules...),
		validation.Field(&data.LastName, nameRules...),
		validation.Field(&data.Email, validation.Required, is.EmailFormat),
	)
}

// SignUpData is what prospective members submit to register themselves, without roles.
type SignUpData struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (data SignUpData) Validate() error {
	return data.registration().Validate()
}

func (data SignUpData) registration() RegisterData {
	return RegisterData{
		Username:  data.Username,
		Password:  data.Password,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
	}
}

// UpdateData lists the changes to a member; nil fields are left untouched.
type UpdateData struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	IsDJ      *bool   `json:"isDJ"`
	IsAdmin   *bool   `json:"isAdmin"`
	Donated   *bool   `json:"donated"`
}

func (data UpdateData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.FirstName, nameRules...),
		validation.Field(&data.LastName, nameRules...),
		validation.Field(&data.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&data.Password, validation.NilOrNotEmpty, validation.Length(5, 72)),
	)
}

// ChangesRoles reports whether the update touches fields only admins may change.
func (data UpdateData) ChangesRoles() bool {
	return data.IsDJ != nil || data.IsAdmin != nil || data.Donated != nil
}

var updateColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"password":  "password",
	"isDJ":      "is_dj",
	"isAdmin":   "is_admin",
	"donated":   "donated",
}

func (data UpdateData) patch() sqlpatch.Patch {
	var patch sqlpatch.Patch
	if data.FirstName != nil {
		patch.Set("firstName", *data.FirstName)
	}
	if data.LastName != nil {
		patch.Set("lastName", *data.LastName)
	}
	if data.Email != nil {
		patch.Set("email", *data.Email)
	}
	if data.Password != nil {
		patch.Set("password", *data.Password)
	}
	if data.IsDJ != nil {
		patch.Set("isDJ", *data.IsDJ)
	}
	if data.IsAdmin != nil {
		patch.Set("isAdmin", *data.IsAdmin)
	}
	if data.Donated != nil {
		patch.Set("donated", *data.Donated)
	}
	return patch
}
