package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/shared"
)

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Logger: shared.NewLogger(io.Discard),
		Output: &buf,
	})
	return runner, &buf
}

func TestRegister(t *testing.T) {
	runner, _ := newTestRunner(t)

	commands := runner.register()

	want := map[string]bool{"setup": false, "auth": false, "playlists": false, "migrate": false, "cache": false}
	for _, cmd := range commands {
		if _, ok := want[cmd.Name]; ok {
			want[cmd.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	runner, buf := newTestRunner(t)

	playlist := providers.Playlist{ID: "P1", Name: "Road Trip"}
	if err := runner.writeJSON(playlist, false); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"id":"P1"`) {
		t.Errorf("output missing playlist id: %s", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output missing trailing newline")
	}
}

func TestParseProviderFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    providers.Provider
		wantErr bool
	}{
		{"spotify", providers.Spotify, false},
		{"youtube", providers.YouTube, false},
		{"yt", providers.YouTube, false},
		{"napster", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseProviderFlag(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProviderFlag(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseProviderFlag(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOAuthConfig(t *testing.T) {
	runner, _ := newTestRunner(t)
	runner.config.Credentials.Spotify.ClientID = "spotify-app"
	runner.config.Credentials.YouTube.ClientID = "youtube-app"

	spotify := runner.oauthConfig(providers.Spotify)
	if spotify.ClientID != "spotify-app" {
		t.Errorf("spotify ClientID = %q", spotify.ClientID)
	}
	if !strings.Contains(spotify.Endpoint.TokenURL, "accounts.spotify.com") {
		t.Errorf("spotify token URL = %q", spotify.Endpoint.TokenURL)
	}

	youtube := runner.oauthConfig(providers.YouTube)
	if youtube.ClientID != "youtube-app" {
		t.Errorf("youtube ClientID = %q", youtube.ClientID)
	}
	if !strings.Contains(youtube.Endpoint.TokenURL, "googleapis.com") {
		t.Errorf("youtube token URL = %q", youtube.Endpoint.TokenURL)
	}
}
