package notify

import (
	"fmt"
	"io"
	"sync"
)

const emptyPanel = "No notifications yet."

// WriteBadge draws the unread counter line.
func WriteBadge(w io.Writer, items []Entry) error {
	unread := 0
	for _, e := range items {
		if !e.Read {
			unread++
		}
	}
	_, err := fmt.Fprintf(w, "Notifications (%d unread)\n", unread)
	return err
}

// WritePanel draws the badge line and the notification list. Each line
// carries the entry id so it can be dismissed or marked read.
func WritePanel(w io.Writer, items []Entry) error {
	if err := WriteBadge(w, items); err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "  "+emptyPanel)
		return err
	}
	for _, e := range items {
		mark := " "
		if !e.Read {
			mark = "*"
		}
		line := fmt.Sprintf("%s %s  %s: %s  [%s]", mark, e.TS.Local().Format("2006-01-02 15:04"), e.Title, e.Message, e.ID)
		if e.Href != "" {
			line += " (" + e.Href + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ToastWriter returns a Toaster callback that prints each toast once, when
// it appears.
func ToastWriter(w io.Writer) func([]Toast) {
	var (
		mu      sync.Mutex
		printed = make(map[string]bool)
	)
	return func(active []Toast) {
		mu.Lock()
		defer mu.Unlock()
		live := make(map[string]bool, len(active))
		for _, t := range active {
			live[t.Entry.ID] = true
			if printed[t.Entry.ID] {
				continue
			}
			printed[t.Entry.ID] = true
			fmt.Fprintln(w, toastLine(t.Entry))
		}
		for id := range printed {
			if !live[id] {
				delete(printed, id)
			}
		}
	}
}

func toastLine(e Entry) string {
	switch e.Level {
	case LevelSuccess:
		return "ok: " + e.Message
	case LevelError:
		return "error: " + e.Message
	default:
		return e.Message
	}
}
