package json_utilities

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/silktrader/onair/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatuses(t *testing.T) {
	for _, tc := range []struct {
		err     error
		status  int
		message string
	}{
		{failure.BadRequest("Duplicate username: dj"), http.StatusBadRequest, "Duplicate username: dj"},
		{fmt.Errorf("wrapped: %w", failure.NotFound("No user: dj")), http.StatusNotFound, "No user: dj"},
		{failure.Unauthorized("Invalid username/password"), http.StatusUnauthorized, "Invalid username/password"},
		{errors.New("database is locked"), http.StatusInternalServerError, "Internal Server Error"},
	} {
		recorder := httptest.NewRecorder()
		Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

		assert.Equal(t, tc.status, recorder.Code)
		var body struct{ Message string }
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, tc.message, body.Message)
	}
}

type sample struct {
	Name string
}

func (s sample) Validate() error {
	return validation.ValidateStruct(&s, validation.Field(&s.Name, validation.Required))
}

func TestDecodeValidate(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name": "Night Owls"}`))
	data, err := DecodeValidate[sample](request)
	require.NoError(t, err)
	assert.Equal(t, "Night Owls", data.Name)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name": ""}`))
	_, err = DecodeValidate[sample](request)
	assert.Error(t, err)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name": "x", "isAdmin": true}`))
	_, err = DecodeValidate[sample](request)
	assert.Error(t, err, "unknown fields are rejected")
}
