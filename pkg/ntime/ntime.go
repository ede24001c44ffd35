package ntime

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// NTime represents a nullable time.Time.
// It can be used a scan destination and can be marshalled to JSON.
type NTime struct {
	time    time.Time
	isValid bool // false when Time is null
}

// UnmarshalJSON parses a quoted RFC3339 time string, or null.
func (nt *NTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*nt = NTime{}
		return nil
	}
	parsedTime, err := time.Parse(`"`+time.RFC3339+`"`, string(b))
	if err != nil {
		return err
	}
	*nt = NTime{parsedTime, true}
	return nil
}

// MarshalJSON implements the Marshaller interface and operates on values rather than pointers, given NTime's heft.
func (nt NTime) MarshalJSON() ([]byte, error) {
	if nt.isValid {
		return []byte(fmt.Sprintf("%q", nt.time.UTC().Format(time.RFC3339))), nil
	}
	return []byte("null"), nil
}

// Scan implements the Scanner interface.
func (nt *NTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*nt = NTime{}
	case time.Time:
		*nt = NTime{v, true}
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return err
		}
		*nt = NTime{parsed, true}
	default:
		return fmt.Errorf("can't scan %T into NTime", value)
	}
	return nil
}

// Value implements the driver Valuer interface.
func (nt NTime) Value() (driver.Value, error) {
	if nt.isValid {
		return driver.Value(nt.time.UTC().Format(time.RFC3339)), nil
	}
	return nil, nil
}

// Now returns the current time, truncated to the second so that it survives a round trip through storage.
func Now() NTime {
	return NTime{time: time.Now().UTC().Truncate(time.Second), isValid: true}
}

func (nt NTime) Time() (time.Time, bool) {
	return nt.time, nt.isValid
}
