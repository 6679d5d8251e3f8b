package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/starford/folio/internal/models"
)

// Terminal renders the reading list as text and asks for confirmations.
type Terminal struct {
	out io.Writer
	in  *bufio.Scanner
}

// NewTerminal creates a terminal surface reading answers from in.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{out: out, in: bufio.NewScanner(in)}
}

// RenderPage prints the cards as an aligned table, or the empty-state line.
func (t *Terminal) RenderPage(p Page) {
	if p.EmptyState {
		if p.Filter == models.FilterAllToken {
			fmt.Fprintln(t.out, "No books yet. Add one with: folio add <title> <author>")
		} else {
			fmt.Fprintf(t.out, "No books with status %q.\n", p.Filter)
		}
		return
	}

	fmt.Fprintf(t.out, "%-36s  %-30s  %-22s  %-10s  %s\n", "ID", "Title", "Author", "Status", "Next")
	fmt.Fprintln(t.out, strings.Repeat("-", 112))
	for _, c := range p.Cards {
		fmt.Fprintf(t.out, "%-36s  %-30s  %-22s  %-10s  %s\n",
			c.ID,
			truncateString(c.Title, 30),
			truncateString(c.Author, 22),
			c.StatusLabel,
			c.ActionLabel)
	}
}

// RenderSlots prints the storage keys, marking the active one.
func (t *Terminal) RenderSlots(keys []string, active string) {
	if len(keys) == 0 {
		fmt.Fprintln(t.out, "No saved reading lists.")
		return
	}
	for _, k := range keys {
		mark := " "
		if k == active {
			mark = "*"
		}
		fmt.Fprintf(t.out, "%s %s\n", mark, k)
	}
}

// RenderNotices prints each notice on its own line.
func (t *Terminal) RenderNotices(ns []Notice) {
	for _, n := range ns {
		if n.Kind == NoticeError {
			fmt.Fprintf(t.out, "Error: %s\n", n.Message)
			continue
		}
		fmt.Fprintln(t.out, n.Message)
	}
}

// Confirm asks whether b should be deleted. Anything but y/yes is a no,
// including end of input.
func (t *Terminal) Confirm(b models.Book) bool {
	return t.Ask(fmt.Sprintf("Delete %q by %s?", b.Title, b.Author))
}

// Ask prints question followed by [y/N] and reports whether the answer was
// y or yes.
func (t *Terminal) Ask(question string) bool {
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	if !t.in.Scan() {
		fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(t.in.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
