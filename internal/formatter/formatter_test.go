package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/tasks"
)

func testPlaylist() providers.Playlist {
	return providers.Playlist{
		ID:          "P1",
		Name:        "Road Trip",
		Description: "windows down",
		Tracks: []providers.Track{
			{ID: "s1", Name: "Artist A - One", Image: "img1"},
			{ID: "s2", Name: "Artist B - Two"},
		},
	}
}

func TestPlaylistToJSON(t *testing.T) {
	data, err := PlaylistToJSON(testPlaylist())
	if err != nil {
		t.Fatalf("PlaylistToJSON() error = %v", err)
	}

	var decoded struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Tracks []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}

	if decoded.ID != "P1" || decoded.Name != "Road Trip" {
		t.Errorf("playlist fields wrong: %+v", decoded)
	}
	if len(decoded.Tracks) != 2 || decoded.Tracks[0].Name != "Artist A - One" {
		t.Errorf("track fields wrong: %+v", decoded.Tracks)
	}
}

func TestPlaylistToCSV(t *testing.T) {
	data, err := PlaylistToCSV(testPlaylist())
	if err != nil {
		t.Fatalf("PlaylistToCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "ID,Name,Image" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "s1,") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestJobRendering(t *testing.T) {
	job := &tasks.JobResult{
		ID:    "job-1",
		State: tasks.JobCompleted,
		Playlists: []tasks.PlaylistMigration{
			{
				Source:        testPlaylist(),
				DestinationID: "D1",
				Outcomes: []tasks.TrackOutcome{
					{Query: "Artist A - One", TrackID: "dst-1", Status: tasks.TrackAppended},
					{Query: "Artist B - Two", Status: tasks.TrackSkipped},
				},
			},
		},
	}

	t.Run("markdown", func(t *testing.T) {
		out := string(JobToMarkdown(job))
		for _, want := range []string{"# Migration job-1", "## Road Trip", "**Destination ID**: D1", "✓ Artist A - One", "– Artist B - Two"} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("text", func(t *testing.T) {
		out := string(JobToText(job))
		if !strings.Contains(out, "1 appended, 1 skipped, 0 failed of 2 tracks") {
			t.Errorf("text missing tally:\n%s", out)
		}
		if strings.Contains(out, "appended Artist A") {
			t.Error("text should not list appended tracks individually")
		}
	})
}
