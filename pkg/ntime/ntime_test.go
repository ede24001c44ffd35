package ntime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalNull(t *testing.T) {
	b, err := json.Marshal(struct{ Added NTime }{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Added": null}`, string(b))
}

func TestJSONRoundTrip(t *testing.T) {
	original := NTime{time.Date(2022, 3, 4, 21, 30, 0, 0, time.UTC), true}

	b, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2022-03-04T21:30:00Z"`, string(b))

	var decoded NTime
	require.NoError(t, json.Unmarshal(b, &decoded))
	decodedTime, valid := decoded.Time()
	assert.True(t, valid)
	assert.True(t, decodedTime.Equal(original.time))
}

func TestScan(t *testing.T) {
	var nt NTime
	require.NoError(t, nt.Scan("2022-03-04T21:30:00Z"))
	_, valid := nt.Time()
	assert.True(t, valid)

	require.NoError(t, nt.Scan(nil))
	_, valid = nt.Time()
	assert.False(t, valid)

	assert.Error(t, nt.Scan(42))
}
