package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/campusenergy/internal/config"
)

func TestFromConfig(t *testing.T) {
	opts := FromConfig(config.DashboardConfig{
		URL:     "http://localhost:3000",
		Cookies: []config.Cookie{{Name: "session", Value: "abc"}},
	})
	assert.Equal(t, 1440, opts.Width)
	assert.Equal(t, 900, opts.Height)
	assert.Equal(t, "body", opts.waitSelector())
	require.Len(t, opts.Cookies, 1)
	assert.NoError(t, opts.validate())

	opts = FromConfig(config.DashboardConfig{URL: "https://dash.example.edu", WaitSelector: "#scenario-chart", Width: 800, Height: 600})
	assert.Equal(t, 800, opts.Width)
	assert.Equal(t, "#scenario-chart", opts.waitSelector())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		err  string
	}{
		{"missing url", Options{Width: 1, Height: 1}, "dashboard URL is required"},
		{"bad scheme", Options{URL: "ftp://host/x", Width: 1, Height: 1}, `unsupported dashboard URL scheme "ftp"`},
		{"bad viewport", Options{URL: "http://host", Width: 0, Height: 10}, "invalid viewport 0x10"},
		{"file url", Options{URL: "file:///tmp/index.html", Width: 10, Height: 10}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestSnapshotRejectsInvalidOptions(t *testing.T) {
	_, err := Snapshot(context.Background(), Options{})
	assert.EqualError(t, err, "dashboard URL is required")
}

func TestSetCookiesEmpty(t *testing.T) {
	assert.NoError(t, SetCookies(context.Background(), nil))
}
