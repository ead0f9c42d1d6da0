package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		value       string
		expected    string
		expectError bool
	}{
		{value: "1990-03-25", expected: "1990-03-25"},
		{value: " 1990-03-25 ", expected: "1990-03-25"},
		{value: "1990-03-25T23:30:00-05:00", expected: "1990-03-25"},
		{value: "25/03/1990", expectError: true},
		{value: "1990-02-30", expectError: true},
	}

	for _, tc := range testCases {
		date, err := ParseDate(tc.value)
		if tc.expectError {
			assert.NotNil(t, err, "Should fail to parse %q", tc.value)
			continue
		}

		assert.Nil(t, err, "Should parse %q", tc.value)
		assert.Equal(t, tc.expected, date.String())
	}
}

func TestDateJSON(t *testing.T) {
	data := struct {
		Birthdate Date `json:"birthdate"`
	}{}

	err := json.Unmarshal([]byte(`{"birthdate":"2001-06-01"}`), &data)
	assert.Nil(t, err)
	assert.Equal(t, NewDate(2001, time.June, 1), data.Birthdate)

	encoded, err := json.Marshal(data)
	assert.Nil(t, err)
	assert.JSONEq(t, `{"birthdate":"2001-06-01"}`, string(encoded))

	err = json.Unmarshal([]byte(`{"birthdate":null}`), &data)
	assert.Nil(t, err)
	assert.True(t, data.Birthdate.IsZero(), "null should decode to the zero date")

	err = json.Unmarshal([]byte(`{"birthdate":1990}`), &data)
	assert.NotNil(t, err, "Should reject non string dates")
}

func TestDateScan(t *testing.T) {
	testCases := []interface{}{
		"1990-03-25",
		[]byte("1990-03-25"),
		"1990-03-25 00:00:00+00:00",
		time.Date(1990, time.March, 25, 0, 0, 0, 0, time.UTC),
	}

	for _, value := range testCases {
		date := Date{}
		err := date.Scan(value)
		assert.Nil(t, err, "Should scan %#v", value)
		assert.Equal(t, "1990-03-25", date.String())
	}

	date := Date{}
	assert.NotNil(t, date.Scan(42), "Should not scan an int")
}
