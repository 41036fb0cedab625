package meetingid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
)

func TestFromLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected string
	}{
		{"bare id", "abc-defg-hij", "abc-defg-hij"},
		{"url path segment", "https://meet.example.com/t/abc-defg-hij", "abc-defg-hij"},
		{"trailing slash", "https://meet.example.com/t/abc-defg-hij/", "abc-defg-hij"},
		{"query suffix ignored", "https://meet.example.com/t/abc-defg-hij?authuser=1", "abc-defg-hij"},
		{"fragment ignored", "https://meet.example.com/t/abc-defg-hij#body", "abc-defg-hij"},
		{"legacy composite", "https://meet.example.com/t/Weekly%20Sync::5f2a9", "5f2a9"},
		{"composite with multiple separators", "/t/a::b::5f2a9", "5f2a9"},
		{"plain path", "/transcripts/5f2a9", "5f2a9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromLocation(tc.location)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFromLocation_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		location string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"composite with empty id", "/t/Weekly Sync::"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromLocation(tc.location)
			require.Error(t, err)
			assert.True(t, mserrors.IsValidation(err))
		})
	}
}
