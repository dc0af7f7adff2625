package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBoolOption(t *testing.T) {
	options := map[string]any{
		"logRequest":  true,
		"logResponse": "true",
		"verbose":     "yes",
		"count":       1,
	}

	assert.True(t, BoolOption(options, OptionLogRequest))
	assert.True(t, BoolOption(options, OptionLogResponse))
	assert.False(t, BoolOption(options, "verbose"))
	assert.False(t, BoolOption(options, "count"))
	assert.False(t, BoolOption(options, "absent"))
	assert.False(t, BoolOption(nil, OptionLogRequest))
}

func TestStringOption(t *testing.T) {
	options := map[string]any{
		OptionReturnFormat: "json",
		OptionAPIKey:       123,
	}

	assert.Equal(t, "json", StringOption(options, OptionReturnFormat))
	assert.Empty(t, StringOption(options, OptionAPIKey))
	assert.Empty(t, StringOption(nil, OptionReturnFormat))
}

func TestTimeoutOption(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
		ok    bool
	}{
		{name: "duration", value: 90 * time.Second, want: 90 * time.Second, ok: true},
		{name: "int seconds", value: 30, want: 30 * time.Second, ok: true},
		{name: "int64 seconds", value: int64(5), want: 5 * time.Second, ok: true},
		{name: "float seconds", value: 0.5, want: 500 * time.Millisecond, ok: true},
		{name: "duration string", value: "250ms", want: 250 * time.Millisecond, ok: true},
		{name: "zero reads as unset", value: 0, ok: false},
		{name: "negative reads as unset", value: -1 * time.Second, ok: false},
		{name: "garbage string reads as unset", value: "soon", ok: false},
		{name: "wrong type reads as unset", value: []int{1}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TimeoutOption(map[string]any{OptionTimeout: tt.value})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := TimeoutOption(nil)
	assert.False(t, ok)
}
