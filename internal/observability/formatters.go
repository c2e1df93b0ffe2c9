// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/advision/internal/palette"
	"github.com/jonathan/advision/internal/readability"
	"github.com/jonathan/advision/internal/rendering"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func labelMark(l readability.Label) string {
	switch l {
	case readability.LabelGood:
		return "●"
	case readability.LabelFair:
		return "◐"
	default:
		return "○"
	}
}

// PrintReadability outputs the three metrics with their labels and the
// counts they were computed from.
func (p *Printer) PrintReadability(r readability.Report) {
	var sb strings.Builder

	for _, m := range []struct {
		name   string
		rating readability.Rating
	}{
		{"Reading Ease", r.FleschReadingEase},
		{"Grade Level", r.FleschGradeLevel},
		{"Fog Index", r.GunningFog},
	} {
		sb.WriteString(fmt.Sprintf("%s %-13s %6.1f  %s\n", labelMark(m.rating.Label), m.name, m.rating.Score, m.rating.Label))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Sentences: %d  Words: %d  Syllables: %d  Complex: %d",
		r.Counts.Sentences, r.Counts.Words, r.Counts.Syllables, r.Counts.ComplexWords))

	p.printBox("READABILITY", sb.String())
}

// PrintRepaired outputs the items recovered from a completion reply, one
// compact JSON value per line.
func (p *Printer) PrintRepaired(items []any) {
	if len(items) == 0 {
		p.printBox("REPAIRED ITEMS", "No usable items recovered")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recovered %d items:\n\n", len(items)))

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		data, err := json.Marshal(items[i])
		if err != nil {
			data = []byte(fmt.Sprintf("%v", items[i]))
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, data))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxItemsToShow))
	}

	p.printBox("REPAIRED ITEMS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPalette outputs the dominant colors of an image.
func (p *Printer) PrintPalette(pal *palette.Palette) {
	if pal == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type: %s\n\n", pal.MIMEType))
	for i, c := range pal.Colors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c))
	}

	p.printBox("BRAND PALETTE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReportSummary outputs what a campaign report contains.
func (p *Printer) PrintReportSummary(data *rendering.ReportData, path string) {
	if data == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Project:  %s\n", data.Project.Name))
	sb.WriteString(fmt.Sprintf("Platform: %s\n", data.Project.TargetPlatform))
	sb.WriteString(fmt.Sprintf("Goal:     %s\n", data.Project.PrimaryGoal))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Ad copies:    %d\n", len(data.AdCopies)))
	sb.WriteString(fmt.Sprintf("Keywords:     %d\n", len(data.Keywords)))
	sb.WriteString(fmt.Sprintf("Audiences:    %d\n", len(data.Audiences)))
	sb.WriteString(fmt.Sprintf("Brand styles: %d\n", len(data.BrandStyles)))
	if path != "" {
		sb.WriteString(fmt.Sprintf("\nWritten to %s", path))
	}

	p.printBox("CAMPAIGN REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
