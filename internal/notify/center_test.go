package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scrumsquad/feedback-board/internal/client/localstore"
)

func TestCenter_NotifyPrependsAndDefaults(t *testing.T) {
	c := NewCenter(localstore.NewMemory())

	c.Info("first")
	e := c.Notify(Notification{Message: "second"})

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != e.ID || items[0].Message != "second" {
		t.Fatalf("newest entry not first: %+v", items)
	}
	if e.Title != "Notification" || e.Level != LevelInfo || e.Read {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if items[1].Title != "Update" {
		t.Fatalf("Info title = %q", items[1].Title)
	}
}

func TestCenter_HelperTitles(t *testing.T) {
	c := NewCenter(localstore.NewMemory())
	c.Success("ok")
	c.Error("bad")

	items := c.Items()
	if items[0].Title != "Error" || items[0].Level != LevelError {
		t.Fatalf("Error helper: %+v", items[0])
	}
	if items[1].Title != "Success" || items[1].Level != LevelSuccess {
		t.Fatalf("Success helper: %+v", items[1])
	}
}

func TestCenter_CapsAtMaxEntries(t *testing.T) {
	c := NewCenter(localstore.NewMemory())
	for i := 0; i < MaxEntries+5; i++ {
		c.Info(fmt.Sprintf("n%d", i))
	}

	items := c.Items()
	if len(items) != MaxEntries {
		t.Fatalf("expected %d items, got %d", MaxEntries, len(items))
	}
	if items[0].Message != fmt.Sprintf("n%d", MaxEntries+4) {
		t.Fatalf("newest entry = %q", items[0].Message)
	}
	if items[MaxEntries-1].Message != "n5" {
		t.Fatalf("oldest kept entry = %q", items[MaxEntries-1].Message)
	}
}

func TestCenter_ReadDismissClear(t *testing.T) {
	c := NewCenter(localstore.NewMemory())
	a := c.Notify(Notification{Message: "a"})
	b := c.Notify(Notification{Message: "b"})
	c.Notify(Notification{Message: "c"})

	c.MarkRead(a.ID)
	if c.Unread() != 2 {
		t.Fatalf("unread after MarkRead = %d", c.Unread())
	}
	c.Dismiss(b.ID)
	for _, e := range c.Items() {
		if e.ID == b.ID {
			t.Fatalf("dismissed entry still present")
		}
	}
	c.MarkAllRead()
	if c.Unread() != 0 {
		t.Fatalf("unread after MarkAllRead = %d", c.Unread())
	}
	c.Clear()
	if len(c.Items()) != 0 {
		t.Fatalf("items after Clear: %+v", c.Items())
	}
}

func TestCenter_UnreadableStorageReadsEmpty(t *testing.T) {
	storage := localstore.NewMemory()
	_ = storage.Set(StorageKey, "{broken")
	c := NewCenter(storage)

	if len(c.Items()) != 0 {
		t.Fatalf("expected empty list")
	}
	c.Info("fresh")
	if len(c.Items()) != 1 {
		t.Fatalf("expected recovery after write")
	}
}

func TestCenter_SiblingsRereadSharedStorage(t *testing.T) {
	storage := localstore.NewMemory()
	bus := NewLocalBus()
	tabA := NewCenter(storage, WithPort(bus.Join()))
	tabB := NewCenter(storage, WithPort(bus.Join()))
	defer tabA.Close()
	defer tabB.Close()

	var mu sync.Mutex
	var seen [][]Entry
	tabB.Listen(func(items []Entry) {
		mu.Lock()
		seen = append(seen, items)
		mu.Unlock()
	})

	e := tabA.Notify(Notification{Message: "from A"})
	tabA.MarkRead(e.ID)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 redraws in tab B, got %d", len(seen))
	}
	last := seen[len(seen)-1]
	if len(last) != 1 || last[0].ID != e.ID || !last[0].Read {
		t.Fatalf("tab B did not re-read storage: %+v", last)
	}
}

func TestCenter_IgnoresFeedEvents(t *testing.T) {
	bus := NewLocalBus()
	server := bus.Join()
	c := NewCenter(localstore.NewMemory(), WithPort(bus.Join()))

	redraws := 0
	c.Listen(func([]Entry) { redraws++ })
	_ = server.Publish(Message{Type: "feed.changed", Kind: "upvoted", PostID: 7})

	if redraws != 0 {
		t.Fatalf("feed event triggered redraw")
	}
}

func TestCenter_RaisesToast(t *testing.T) {
	sched := &manualScheduler{}
	toaster := NewToasterWithScheduler(sched, nil)
	c := NewCenter(localstore.NewMemory(), WithToaster(toaster))
	c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	c.Success("saved")
	active := toaster.Active()
	if len(active) != 1 || active[0].Entry.Message != "saved" {
		t.Fatalf("unexpected toasts: %+v", active)
	}
	if !active[0].Entry.TS.Equal(c.now()) {
		t.Fatalf("unexpected timestamp: %v", active[0].Entry.TS)
	}
}
