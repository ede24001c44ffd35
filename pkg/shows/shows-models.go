package shows

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/silktrader/onair/pkg/sqlpatch"
)

// 24h HH:MM
var showTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var showNameRules = []validation.Rule{validation.Length(1, 60)}
var showTimeRules = []validation.Rule{validation.Match(showTimePattern).Error("must be formatted as HH:MM")}
var dayRules = []validation.Rule{validation.Min(0), validation.Max(6)}

type Show struct {
	ID          int64  `db:"id" json:"id"`
	DJID        *int64 `db:"dj_id" json:"djID"`
	DJName      string `db:"dj_name" json:"djName"`
	ShowName    string `db:"show_name" json:"showName"`
	DayOfWeek   int    `db:"day_of_week" json:"dayOfWeek"`
	ShowTime    string `db:"show_time" json:"showTime"`
	ImgURL      string `db:"img_url" json:"imgURL"`
	Description string `db:"description" json:"description"`
}

// PlaylistSummary lists a playlist aired by a show.
type PlaylistSummary struct {
	ID          int64  `db:"id" json:"id"`
	Date        string `db:"date" json:"date"`
	Description string `db:"description" json:"description"`
}

// Details is a show along with its playlists, most recent first.
type Details struct {
	Show
	Playlists []PlaylistSummary `json:"playlists"`
}

type NewShowData struct {
	DJID        *int64 `json:"djID"`
	DJName      string `json:"djName"`
	ShowName    string `json:"showName"`
	DayOfWeek   *int   `json:"dayOfWeek"`
	ShowTime    string `json:"showTime"`
	ImgURL      string `json:"imgURL"`
	Description string `json:"description"`
}

func (data NewShowData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.DJName, validation.Length(0, 60)),
		validation.Field(&data.ShowName, append([]validation.Rule{validation.Required}, showNameRules...)...),
		validation.Field(&data.DayOfWeek, append([]validation.Rule{validation.NotNil}, dayRules...)...),
		validation.Field(&data.ShowTime, append([]validation.Rule{validation.Required}, showTimeRules...)...),
		validation.Field(&data.ImgURL, is.URL),
		validation.Field(&data.Description, validation.Length(0, 500)),
	)
}

// UpdateData lists the changes to a show; nil fields are left untouched.
type UpdateData struct {
	DJID        *int64  `json:"djID"`
	DJName      *string `json:"djName"`
	ShowName    *string `json:"showName"`
	DayOfWeek   *int    `json:"dayOfWeek"`
	ShowTime    *string `json:"showTime"`
	ImgURL      *string `json:"imgURL"`
	Description *string `json:"description"`
}

func (data UpdateData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.DJName, validation.Length(0, 60)),
		validation.Field(&data.ShowName, append([]validation.Rule{validation.NilOrNotEmpty}, showNameRules...)...),
		validation.Field(&data.DayOfWeek, dayRules...),
		validation.Field(&data.ShowTime, append([]validation.Rule{validation.NilOrNotEmpty}, showTimeRules...)...),
		validation.Field(&data.ImgURL, is.URL),
		validation.Field(&data.Description, validation.Length(0, 500)),
	)
}

// ReassignsDJ reports whether the update hands the show to another member.
func (data UpdateData) ReassignsDJ() bool {
	return data.DJID != nil
}

var updateColumns = map[string]string{
	"djID":        "dj_id",
	"djName":      "dj_name",
	"showName":    "show_name",
	"dayOfWeek":   "day_of_week",
	"showTime":    "show_time",
	"imgURL":      "img_url",
	"description": "description",
}

func (data UpdateData) patch() sqlpatch.Patch {
	var patch sqlpatch.Patch
	if data.DJID != nil {
		patch.Set("djID", *data.DJID)
	}
	if data.DJName != nil {
		patch.Set("djName", *data.DJName)
	}
	if data.ShowName != nil {
		patch.Set("showName", *data.ShowName)
	}
	if data.DayOfWeek != nil {
		patch.Set("dayOfWeek", *data.DayOfWeek)
	}
	if data.ShowTime != nil {
		patch.Set("showTime", *data.ShowTime)
	}
	if data.ImgURL != nil {
		patch.Set("imgURL", *data.ImgURL)
	}
	if data.Description != nil {
		patch.Set("description", *data.Description)
	}
	return patch
}
