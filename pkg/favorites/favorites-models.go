package favorites

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/silktrader/onair/pkg/ntime"
)

type Favorite struct {
	ID       int64       `db:"id" json:"favoriteID"`
	MemberID int64       `db:"member_id" json:"memberID"`
	ShowID   int64       `db:"show_id" json:"showID"`
	Added    ntime.NTime `db:"added" json:"added"`
}

// FavoriteShow is a show favorited by a member.
type FavoriteShow struct {
	ShowID int64 `db:"show_id" json:"showID"`
}

// Data pairs a member with a show.
type Data struct {
	MemberID int64 `json:"memberID"`
	ShowID   int64 `json:"showID"`
}

func (data Data) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.MemberID, validation.Required, validation.Min(int64(1))),
		validation.Field(&data.ShowID, validation.Required, validation.Min(int64(1))),
	)
}
