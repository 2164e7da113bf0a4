package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"1960 [YR1960]", 1960, true},
		{"2023", 2023, true},
		{"YR2001", 2001, true},
		{"Unnamed: 68", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ExtractYear(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"78.5", 78.5, true},
		{" 12 ", 12, true},
		{"1e3", 1000, true},
		{"..", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYear(t *testing.T) {
	y, ok := ParseYear("2000.0")
	assert.True(t, ok)
	assert.Equal(t, 2000, y)

	_, ok = ParseYear("2000.5")
	assert.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{78.5, "78.5"},
		{100, "100.0"},
		{0, "0.0"},
		{-3, "-3.0"},
		{5000000, "5000000.0"},
		{0.1, "0.1"},
		{1e20, "1e+20"},
		{0.00001, "1e-05"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestOptionalRoundTrip(t *testing.T) {
	assert.Equal(t, "", FormatOptional(nil))
	assert.Nil(t, ParseOptional(""))

	v := 71.25
	got := ParseOptional(FormatOptional(&v))
	if assert.NotNil(t, got) {
		assert.Equal(t, v, *got)
	}
}

func TestTypedValue(t *testing.T) {
	assert.Equal(t, int64(2000), TypedValue("2000"))
	assert.Equal(t, 75.5, TypedValue("75.5"))
	assert.Equal(t, 100.0, TypedValue("100.0"))
	assert.Nil(t, TypedValue(""))
	assert.Nil(t, TypedValue("  "))
	assert.Equal(t, "Austria", TypedValue("Austria"))
	assert.Equal(t, "NaN", TypedValue("NaN"))
}
