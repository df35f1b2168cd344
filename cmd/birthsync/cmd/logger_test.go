package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "default is info",
			config: Config{},
			want:   "info",
		},
		{
			name:   "verbose means debug",
			config: Config{Verbose: true},
			want:   "debug",
		},
		{
			name:   "quiet means warn",
			config: Config{Quiet: true},
			want:   "warn",
		},
		{
			name:   "quiet wins over verbose",
			config: Config{Verbose: true, Quiet: true},
			want:   "warn",
		},
		{
			name:   "explicit level wins over verbose",
			config: Config{Verbose: true, LogLevel: "error"},
			want:   "error",
		},
		{
			name:   "invalid explicit level falls back to info",
			config: Config{LogLevel: "loud"},
			want:   "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{}
	c.applyDefaults()

	assert.Equal(t, "table", c.Output)
	assert.Equal(t, "calendar.csv", c.StorePath)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, 60.0, c.MatchThreshold)
	assert.Equal(t, 10, c.MatchLimit)

	// Explicit values survive.
	c = &Config{Output: "json", StorePath: "x.csv", Workers: 2, MatchThreshold: 80, MatchLimit: 3}
	c.applyDefaults()
	assert.Equal(t, "json", c.Output)
	assert.Equal(t, "x.csv", c.StorePath)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, 80.0, c.MatchThreshold)
	assert.Equal(t, 3, c.MatchLimit)
}
