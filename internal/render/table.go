package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/MrSnakeDoc/otot/internal/domain"
)

var (
	purple = lipgloss.Color("99")  // borders
	pink   = lipgloss.Color("205") // header text
	white  = lipgloss.Color("255")
	gray   = lipgloss.Color("245")

	headerStyle = lipgloss.NewStyle().
			Foreground(pink).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(white).
			Padding(0, 1)

	dimStyle = cellStyle.Foreground(gray)

	borderStyle = lipgloss.NewStyle().Foreground(purple)

	labelStyle = lipgloss.NewStyle().Foreground(pink).Bold(true)
)

// CandidateView is the serialized form of a ranked candidate.
type CandidateView struct {
	Rank         int       `json:"rank"`
	URL          string    `json:"url"`
	VisitCount   int64     `json:"visit_count"`
	LastAccessed time.Time `json:"last_accessed"`
	Frecency     float64   `json:"frecency"`
	MatchScore   float64   `json:"match_score,omitempty"`
	Skipped      int       `json:"skipped_segments,omitempty"`
}

// Views converts candidates into their serialized form, ranks starting at 1.
func Views(candidates []*domain.Candidate) []CandidateView {
	views := make([]CandidateView, 0, len(candidates))
	for i, c := range candidates {
		views = append(views, CandidateView{
			Rank:         i + 1,
			URL:          c.Record.URL,
			VisitCount:   c.Record.VisitCount,
			LastAccessed: c.Record.LastAccessed,
			Frecency:     c.Frecency,
			MatchScore:   c.Quality.Score,
			Skipped:      c.Quality.Skipped,
		})
	}
	return views
}

// JSON writes candidates as an indented JSON array.
func JSON(w io.Writer, candidates []*domain.Candidate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Views(candidates))
}

// Table writes candidates as a bordered table. The match column is shown
// only for query results.
func Table(w io.Writer, candidates []*domain.Candidate, now time.Time, withMatch bool) error {
	headers := []string{"#", "URL", "VISITS", "LAST OPENED", "FRECENCY"}
	if withMatch {
		headers = append(headers, "MATCH")
	}

	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		row := []string{
			strconv.Itoa(i + 1),
			c.Record.URL,
			humanize.Comma(c.Record.VisitCount),
			humanize.RelTime(c.Record.LastAccessed, now, "ago", "from now"),
			strconv.FormatFloat(c.Frecency, 'f', 2, 64),
		}
		if withMatch {
			row = append(row, strconv.FormatFloat(c.Quality.Score, 'f', 1, 64))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 || col == 3:
				return dimStyle
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Record writes one record as aligned key/value lines.
func Record(w io.Writer, r *domain.Record, policy domain.FrecencyPolicy, now time.Time) error {
	lines := [][2]string{
		{"url", r.URL},
		{"host", r.Host},
		{"path", fmt.Sprintf("%q", r.Path)},
		{"domain", r.BaseDomain},
		{"visits", humanize.Comma(r.VisitCount)},
		{"last opened", fmt.Sprintf("%s (%s)", r.LastAccessed.Format(time.RFC3339), humanize.RelTime(r.LastAccessed, now, "ago", "from now"))},
		{"frecency", strconv.FormatFloat(policy.Score(r.VisitCount, r.LastAccessed, now), 'f', 2, 64)},
	}

	label := labelStyle.Width(12)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, label.Render(l[0])+" "+l[1]); err != nil {
			return err
		}
	}
	return nil
}
