// package formatter renders playlists and migration reports to CSV,
// Markdown, and plain text for export from the CLI.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/tasks"
)

// PlaylistToJSON renders a playlist in the CLI's JSON shape.
func PlaylistToJSON(pl providers.Playlist) ([]byte, error) {
	data, err := json.MarshalIndent(pl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlist: %w", err)
	}
	return data, nil
}

// PlaylistsToJSON renders a playlist listing in the CLI's JSON shape.
func PlaylistsToJSON(playlists []providers.Playlist) ([]byte, error) {
	data, err := json.MarshalIndent(playlists, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlists: %w", err)
	}
	return data, nil
}

// PlaylistToCSV converts a playlist to CSV with columns: ID, Name, Image
func PlaylistToCSV(pl providers.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Image"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range pl.Tracks {
		if err := writer.Write([]string{track.ID, track.Name, track.Image}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// JobToMarkdown converts a migration job's results to Markdown.
func JobToMarkdown(job *tasks.JobResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Migration %s\n\n", job.ID))
	buf.WriteString(fmt.Sprintf("**State**: %s\n\n", job.State))

	for _, pl := range job.Playlists {
		buf.WriteString(fmt.Sprintf("## %s\n\n", pl.Source.Name))
		buf.WriteString(fmt.Sprintf("**Destination ID**: %s\n\n", pl.DestinationID))

		appended, skipped, failed := tallyOutcomes(pl.Outcomes)
		buf.WriteString(fmt.Sprintf("**Appended**: %d · **Skipped**: %d · **Failed**: %d\n\n", appended, skipped, failed))

		for i, outcome := range pl.Outcomes {
			switch outcome.Status {
			case tasks.TrackAppended:
				buf.WriteString(fmt.Sprintf("%d. ✓ %s\n", i+1, outcome.Query))
			case tasks.TrackSkipped:
				buf.WriteString(fmt.Sprintf("%d. – %s (no match)\n", i+1, outcome.Query))
			default:
				buf.WriteString(fmt.Sprintf("%d. ✗ %s: %v\n", i+1, outcome.Query, outcome.Err))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// JobToText converts a migration job's results to plain text for
// terminal display.
func JobToText(job *tasks.JobResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Migration %s (%s)\n", job.ID, job.State))

	for _, pl := range job.Playlists {
		appended, skipped, failed := tallyOutcomes(pl.Outcomes)
		buf.WriteString(fmt.Sprintf("\n%s -> %s\n", pl.Source.Name, pl.DestinationID))
		buf.WriteString(fmt.Sprintf("  %d appended, %d skipped, %d failed of %d tracks\n",
			appended, skipped, failed, len(pl.Outcomes)))

		for _, outcome := range pl.Outcomes {
			if outcome.Status == tasks.TrackAppended {
				continue
			}
			buf.WriteString(fmt.Sprintf("  %s %s", outcome.Status, outcome.Query))
			if outcome.Err != nil {
				buf.WriteString(fmt.Sprintf(": %v", outcome.Err))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes()
}

func tallyOutcomes(outcomes []tasks.TrackOutcome) (appended, skipped, failed int) {
	for _, outcome := range outcomes {
		switch outcome.Status {
		case tasks.TrackAppended:
			appended++
		case tasks.TrackSkipped:
			skipped++
		case tasks.TrackFailed:
			failed++
		}
	}
	return appended, skipped, failed
}
