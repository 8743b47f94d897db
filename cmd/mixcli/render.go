package main

import (
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"github.com/osa030/artimix/internal/api/mixv1"
)

var (
	green = lipgloss.Color("#1DB954")
	grey  = lipgloss.Color("#B3B3B3")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(green)
	mutedStyle = lipgloss.NewStyle().Foreground(grey)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E22134"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(green).Padding(0, 1)
)

func renderPreview(p mixv1.Preview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(p.PlaylistName))
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(fmt.Sprintf("%d tracks, showing %d  (id %s)", p.TotalTracks, p.DisplayedTrackCount, p.ID)))

	contributions := make([]string, 0, len(p.Contributions))
	for _, c := range p.Contributions {
		contributions = append(contributions, fmt.Sprintf("%-24s %3d tracks  (%d%%)", c.Name, c.Count, c.RequestedWeightPercent))
	}
	b.WriteString(boxStyle.Render(strings.Join(contributions, "\n")))
	b.WriteString("\n\n")

	for i, t := range p.TracksForDisplay {
		fmt.Fprintf(&b, "%3d. %s %s\n", i+1, t.Name, mutedStyle.Render("- "+strings.Join(t.Artists, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSuggestions(suggestions []mixv1.Suggestion) string {
	if len(suggestions) == 0 {
		return mutedStyle.Render("No artists found.")
	}
	lines := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		line := fmt.Sprintf("%s  %s", titleStyle.Render(s.Name), mutedStyle.Render(s.ID))
		if s.Related {
			line += mutedStyle.Render("  (related)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderCommit(res *mixv1.CommitPreviewResponse) string {
	return boxStyle.Render(fmt.Sprintf("%s\n%d tracks\n%s",
		titleStyle.Render("Created "+res.PlaylistName), res.TrackCount, res.PlaylistURL))
}

func renderLikedTracks(tracks []mixv1.LikedTrack) string {
	if len(tracks) == 0 {
		return mutedStyle.Render("No saved tracks.")
	}
	lines := make([]string, 0, len(tracks))
	for _, t := range tracks {
		lines = append(lines, fmt.Sprintf("%s %s", t.Name, mutedStyle.Render("- "+strings.Join(t.Artists, ", ")+" / "+t.Album)))
	}
	return strings.Join(lines, "\n")
}

func renderArtists(artists []mixv1.Artist) string {
	if len(artists) == 0 {
		return mutedStyle.Render("No artists.")
	}
	lines := make([]string, 0, len(artists))
	for _, a := range artists {
		lines = append(lines, fmt.Sprintf("%s  %s", a.Name, mutedStyle.Render(a.ID)))
	}
	return strings.Join(lines, "\n")
}

// renderError shows the server's message for RPC failures.
func renderError(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return errorStyle.Render("Error: ") + cerr.Message() + mutedStyle.Render(" ["+cerr.Code().String()+"]")
	}
	return errorStyle.Render("Error: ") + err.Error()
}
