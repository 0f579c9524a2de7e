package notify

import (
	"sync"
	"time"
)

const (
	// ToastVisible is how long a toast stays before it starts fading.
	ToastVisible = 3 * time.Second
	// ToastFade is how long the fade lasts before the toast is removed.
	ToastFade = 250 * time.Millisecond
)

// Scheduler runs f after d. time.AfterFunc satisfies it through SchedulerFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type SchedulerFunc func(d time.Duration, f func())

func (s SchedulerFunc) AfterFunc(d time.Duration, f func()) { s(d, f) }

func realScheduler() Scheduler {
	return SchedulerFunc(func(d time.Duration, f func()) { time.AfterFunc(d, f) })
}

// Toast is a transient view of a notification.
type Toast struct {
	Entry  Entry
	Hiding bool
}

// Toaster keeps the visible toasts of one browsing context.
type Toaster struct {
	mu       sync.Mutex
	toasts   []*Toast
	sched    Scheduler
	onChange func([]Toast)
}

// NewToaster returns a Toaster on the wall clock. onChange may be nil.
func NewToaster(onChange func([]Toast)) *Toaster {
	return NewToasterWithScheduler(realScheduler(), onChange)
}

func NewToasterWithScheduler(sched Scheduler, onChange func([]Toast)) *Toaster {
	return &Toaster{sched: sched, onChange: onChange}
}

// Show raises a toast for e. It starts fading after ToastVisible and is
// removed ToastFade later.
func (t *Toaster) Show(e Entry) {
	toast := &Toast{Entry: e}
	t.mu.Lock()
	t.toasts = append(t.toasts, toast)
	t.mu.Unlock()
	t.changed()

	t.sched.AfterFunc(ToastVisible, func() {
		t.mu.Lock()
		toast.Hiding = true
		t.mu.Unlock()
		t.changed()

		t.sched.AfterFunc(ToastFade, func() {
			t.mu.Lock()
			for i, x := range t.toasts {
				if x == toast {
					t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
					break
				}
			}
			t.mu.Unlock()
			t.changed()
		})
	})
}

// Active returns the toasts currently on screen, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.toasts))
	for i, x := range t.toasts {
		out[i] = *x
	}
	return out
}

func (t *Toaster) changed() {
	if t.onChange != nil {
		t.onChange(t.Active())
	}
}
