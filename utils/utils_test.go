package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunId(t *testing.T) {
	id := RunId()
	assert.Len(t, id, 6)
	assert.NotEqual(t, id, RunId())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly ten", Truncate("exactly ten", 11))
	assert.Equal(t, "What's y...", Truncate("What's your TikTok username?", 11))
}

func TestCleanUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Khaby", "khaby"},
		{"khaby.lame", "khabylame"},
		{"User Name!", "username"},
		{"ALL_CAPS_99", "allcaps99"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanUsername(tt.in))
		})
	}
}
