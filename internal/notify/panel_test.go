package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePanel(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePanel(&buf, nil); err != nil {
		t.Fatalf("WritePanel: %v", err)
	}
	if !strings.Contains(buf.String(), "(0 unread)") || !strings.Contains(buf.String(), "No notifications yet.") {
		t.Fatalf("empty panel: %q", buf.String())
	}

	buf.Reset()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []Entry{
		{ID: "1", TS: ts, Title: "Success", Message: "Feed loaded!"},
		{ID: "2", TS: ts, Title: "Update", Message: "hi", Href: "/feed", Read: true},
	}
	if err := WritePanel(&buf, items); err != nil {
		t.Fatalf("WritePanel: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "(1 unread)") {
		t.Fatalf("badge: %q", out)
	}
	if !strings.Contains(out, "* ") || !strings.Contains(out, "Success: Feed loaded!  [1]") || !strings.Contains(out, "(/feed)") {
		t.Fatalf("list: %q", out)
	}
}

func TestWriteBadge(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBadge(&buf, []Entry{{ID: "a"}, {ID: "b", Read: true}, {ID: "c"}}); err != nil {
		t.Fatalf("WriteBadge: %v", err)
	}
	if buf.String() != "Notifications (2 unread)\n" {
		t.Fatalf("badge: %q", buf.String())
	}
}

func TestToastWriter_PrintsEachToastOnce(t *testing.T) {
	var buf bytes.Buffer
	sched := &manualScheduler{}
	toaster := NewToasterWithScheduler(sched, ToastWriter(&buf))

	toaster.Show(Entry{ID: "1", Message: "Feed loaded!", Level: LevelSuccess})
	toaster.Show(Entry{ID: "2", Message: "Sorting by: Oldest First", Level: LevelInfo})
	for len(sched.pending) > 0 {
		sched.fire(t)
	}
	if got := toaster.Active(); len(got) != 0 {
		t.Fatalf("toasts left after fading: %+v", got)
	}
	toaster.Show(Entry{ID: "3", Message: "Upvote failed", Level: LevelError})

	want := "ok: Feed loaded!\nSorting by: Oldest First\nerror: Upvote failed\n"
	if buf.String() != want {
		t.Fatalf("toast output:\n%q\nwant\n%q", buf.String(), want)
	}
}
