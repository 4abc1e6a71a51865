// Package output renders parsed git results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Calder-Labs/gitrun/internal/porcelain"
	"github.com/Calder-Labs/gitrun/internal/progress"
)

// Styles holds the lipgloss styles used for human-readable output.
type Styles struct {
	Branch   lipgloss.Style
	Added    lipgloss.Style
	Deleted  lipgloss.Style
	Modified lipgloss.Style
	Unmerged lipgloss.Style
	Dim      lipgloss.Style
	Hash     lipgloss.Style
}

func defaultStyles(color bool) *Styles {
	if !color {
		return &Styles{}
	}
	return &Styles{
		Branch:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Added:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Deleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Modified: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Unmerged: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Dim:      lipgloss.NewStyle().Faint(true),
		Hash:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// Printer writes rendered results to a writer, as styled text or JSON.
type Printer struct {
	w      io.Writer
	json   bool
	styles *Styles
}

// NewPrinter creates a Printer. JSON mode wins over color.
func NewPrinter(w io.Writer, jsonMode, color bool) *Printer {
	return &Printer{w: w, json: jsonMode, styles: defaultStyles(color && !jsonMode)}
}

// Status renders a parsed porcelain status.
func (p *Printer) Status(st porcelain.Status) error {
	if p.json {
		return p.encode(statusJSON(st))
	}

	if st.Branch != "" {
		header := "On branch " + p.styles.Branch.Render(st.Branch)
		if st.Upstream != "" {
			header += p.styles.Dim.Render(fmt.Sprintf(" [%s +%d -%d]", st.Upstream, st.Ahead, st.Behind))
		}
		fmt.Fprintln(p.w, header)
	}

	for _, entry := range st.Entries {
		xy := string([]byte{entry.IndexState, entry.WorkdirState})
		line := xy + " " + entry.Path
		if entry.OriginalPath != "" {
			line += p.styles.Dim.Render(" <- " + entry.OriginalPath)
		}
		fmt.Fprintln(p.w, p.styleForStates(entry).Render(line))
	}
	return nil
}

func (p *Printer) styleForStates(entry porcelain.StatusEntry) lipgloss.Style {
	switch {
	case entry.IndexState == 'U' || entry.WorkdirState == 'U':
		return p.styles.Unmerged
	case entry.IndexState == '?':
		return p.styles.Dim
	case entry.IndexState == 'A':
		return p.styles.Added
	case entry.IndexState == 'D' || entry.WorkdirState == 'D':
		return p.styles.Deleted
	default:
		return p.styles.Modified
	}
}

// Log renders parsed commits, one block per commit.
func (p *Printer) Log(commits []porcelain.Commit) error {
	if p.json {
		return p.encode(commits)
	}

	for _, c := range commits {
		fmt.Fprintf(p.w, "%s %s\n", p.styles.Hash.Render(c.AbbrevHash), c.Subject)
		fmt.Fprintln(p.w, p.styles.Dim.Render(fmt.Sprintf("  %s <%s>", c.Author.Name, c.Author.Email)))
		if c.Body != "" {
			for _, line := range strings.Split(c.Body, "\n") {
				fmt.Fprintln(p.w, "  "+line)
			}
		}
	}
	return nil
}

// Diff renders a parsed diff summary.
func (p *Printer) Diff(d porcelain.Diff) error {
	if p.json {
		return p.encode(d.Entries)
	}

	if len(d.Entries) == 0 && d.Raw != "" {
		_, err := io.WriteString(p.w, d.Raw)
		return err
	}

	for _, entry := range d.Entries {
		var style lipgloss.Style
		switch entry.Status {
		case porcelain.DiffAdded:
			style = p.styles.Added
		case porcelain.DiffDeleted:
			style = p.styles.Deleted
		default:
			style = p.styles.Modified
		}

		line := string(entry.Status) + "\t" + entry.Path
		if entry.OldPath != "" {
			line += p.styles.Dim.Render(" <- " + entry.OldPath)
		}
		if entry.Additions != 0 || entry.Deletions != 0 {
			line += p.styles.Dim.Render(" (+" + countText(entry.Additions) + " -" + countText(entry.Deletions) + ")")
		}
		fmt.Fprintln(p.w, style.Render(line))
	}
	return nil
}

// Progress renders one progress event as a single line.
func (p *Printer) Progress(ev progress.Event) {
	switch e := ev.(type) {
	case progress.ToolProgress:
		fmt.Fprintf(p.w, "%s: %d%% (%d/%d)\n", e.Phase, e.Percent, e.Current, e.Total)
	case progress.TransferProgress:
		if e.Percent != progress.PercentUnknown {
			fmt.Fprintf(p.w, "%s: %d%% (%d/%d files)\n", e.Direction, e.Percent, e.FilesCompleted, e.FilesTotal)
		} else {
			fmt.Fprintf(p.w, "%s: %d/%d bytes (%d/%d files)\n", e.Direction, e.BytesSoFar, e.BytesTotal, e.FilesCompleted, e.FilesTotal)
		}
	}
}

func (p *Printer) encode(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func countText(n int) string {
	if n == porcelain.CountUnknown {
		return "?"
	}
	return strconv.Itoa(n)
}

// statusJSON flattens byte states to strings so the JSON form is readable.
func statusJSON(st porcelain.Status) map[string]interface{} {
	entries := make([]map[string]string, 0, len(st.Entries))
	for _, e := range st.Entries {
		m := map[string]string{
			"path":    e.Path,
			"index":   string(e.IndexState),
			"workdir": string(e.WorkdirState),
		}
		if e.OriginalPath != "" {
			m["original_path"] = e.OriginalPath
		}
		entries = append(entries, m)
	}
	return map[string]interface{}{
		"branch":   st.Branch,
		"upstream": st.Upstream,
		"ahead":    st.Ahead,
		"behind":   st.Behind,
		"entries":  entries,
	}
}
