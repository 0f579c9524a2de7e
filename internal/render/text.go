package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders f for a terminal.
func WriteText(w io.Writer, f Feed) error {
	if f.Empty {
		_, err := fmt.Fprintf(w, "%s\n%s\n", f.EmptyTitle, f.EmptyHint)
		return err
	}

	var b strings.Builder
	for i, c := range f.Cards {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := " "
		if c.Upvoted {
			marker = "*"
		}
		id := c.Key
		if c.Pending {
			id += " (sending…)"
		}
		fmt.Fprintf(&b, "[%s] %s\n", id, c.Issue)
		fmt.Fprintf(&b, "  Impact:     %s\n", c.Impact)
		fmt.Fprintf(&b, "  Suggestion: %s\n", c.Suggestion)
		fmt.Fprintf(&b, "  %s • %s • %s   %s👍 %d\n", c.Theme, c.Date, c.AuthorLabel, marker, c.Upvotes)
		if c.UpdatesVisible {
			switch {
			case c.UpdatesLoading:
				fmt.Fprintf(&b, "  %s\n", LoadingUpdates)
			case c.UpdatesEmpty:
				fmt.Fprintf(&b, "  %s\n", NoUpdates)
			}
			for _, u := range c.Updates {
				fmt.Fprintf(&b, "  ↳ %s (%s): %s\n", u.Role, u.When, u.Content)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
