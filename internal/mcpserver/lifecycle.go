package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/folio/internal/models"
)

const lifecycleURI = "folio://lifecycle"

// LifecycleDoc describes the reading-list model for LLM consumers: the
// status cycle, the filters, and how the tools map onto it.
func LifecycleDoc() string {
	var b strings.Builder
	b.WriteString("# Folio reading list\n\n")
	b.WriteString("Every book has a title, an author, and one of three statuses. ")
	b.WriteString("Advancing a book moves it one step around a closed cycle:\n\n")
	b.WriteString("| status | label | action | next |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, s := range models.Statuses() {
		fmt.Fprintf(&b, "| `%s` | %s | %s | `%s` |\n", s, s.Label(), s.ActionLabel(), s.Next())
	}
	b.WriteString("\n## Filters\n\n")
	for _, f := range models.Filters() {
		fmt.Fprintf(&b, "- `%s`: %s\n", f, f.Label())
	}
	b.WriteString(`
## Rules

1. New books always start as ` + "`to-read`" + `.
2. Title and author are required and are trimmed of surrounding whitespace.
3. ` + "`advance_book`" + ` is the only way to change a status; it never skips a step.
4. ` + "`delete_book`" + ` removes nothing unless ` + "`confirm`" + ` is true. Ask the user first.
5. Listing preserves the order in which books were added.
`)
	return b.String()
}
