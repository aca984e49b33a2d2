// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/bookmark-organizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
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

// PrintBatchProgress writes a one-line progress update for a completed batch.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBatchProgress(batch, total, organized int) {
	fmt.Fprintf(p.out, "Batch %d/%d organized (%d bookmarks so far)\n", batch+1, total, organized)
}

// PrintCategorySummary outputs the folders that will be produced and a few members of each.
func (p *Printer) PrintCategorySummary(bookmarks []types.OrganizedBookmark) {
	if len(bookmarks) == 0 {
		return
	}

	var order []string
	members := make(map[string][]types.OrganizedBookmark)
	for _, b := range bookmarks {
		folder := b.Folder()
		if _, seen := members[folder]; !seen {
			order = append(order, folder)
		}
		members[folder] = append(members[folder], b)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d bookmarks in %d categories\n", len(bookmarks), len(order)))

	for _, folder := range order {
		list := members[folder]
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", folder, len(list)))
		count := min(len(list), maxItemsToShow)
		for i := 0; i < count; i++ {
			title := list[i].Title
			if title == "" {
				title = list[i].URL
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", title))
		}
		if len(list) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(list)-maxItemsToShow))
		}
	}

	p.printBox("ORGANIZED BOOKMARKS", strings.TrimSuffix(sb.String(), "\n"))
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}
