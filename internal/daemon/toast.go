package daemon

import (
	"fmt"
	"sync"
	"time"
)

// Default toast timings
const (
	DefaultToastDelay    = 100 * time.Millisecond
	DefaultToastDuration = 3 * time.Second
)

// ToastKind is the kind of message shown by a toast
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
	ToastWarning
)

func (k ToastKind) String() string {
	switch k {
	case ToastSuccess:
		return "success"
	case ToastError:
		return "error"
	case ToastWarning:
		return "warning"
	default:
		return fmt.Sprintf("ToastKind(%d)", int(k))
	}
}

// ToastState is the visibility of a toast
type ToastState int

const (
	ToastHidden ToastState = iota
	ToastPending
	ToastVisible
)

func (s ToastState) String() string {
	switch s {
	case ToastHidden:
		return "hidden"
	case ToastPending:
		return "pending"
	case ToastVisible:
		return "visible"
	default:
		return fmt.Sprintf("ToastState(%d)", int(s))
	}
}

// ToastMessage is a snapshot of the toast
type ToastMessage struct {
	State   ToastState
	Kind    ToastKind
	Message string
}

type stopper interface {
	Stop() bool
}

// afterFunc schedules f after d, like time.AfterFunc
type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Toast is a short-lived message: pending on Show, visible after the show
// delay, hidden again after the duration. A new Show replaces the previous
// message and restarts both timers.
type Toast struct {
	mu         sync.Mutex
	current    ToastMessage
	generation uint64
	timer      stopper

	delay    time.Duration
	duration time.Duration
	after    afterFunc
	onChange func(ToastMessage)
}

// NewToast creates a hidden toast. onChange is called on every state change
// and may be nil.
func NewToast(duration time.Duration, onChange func(ToastMessage)) *Toast {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Toast{
		delay:    DefaultToastDelay,
		duration: duration,
		after:    realAfterFunc,
		onChange: onChange,
	}
}

// Show queues a message
func (t *Toast) Show(kind ToastKind, message string) {
	t.mu.Lock()
	t.stopTimer()
	t.generation++
	gen := t.generation
	t.current = ToastMessage{State: ToastPending, Kind: kind, Message: message}
	snapshot := t.current
	t.timer = t.after(t.delay, func() { t.transition(gen, ToastVisible) })
	t.mu.Unlock()

	t.notify(snapshot)
}

// Hide hides the toast immediately
func (t *Toast) Hide() {
	t.mu.Lock()
	if t.current.State == ToastHidden {
		t.mu.Unlock()
		return
	}
	t.stopTimer()
	t.generation++
	t.current.State = ToastHidden
	snapshot := t.current
	t.mu.Unlock()

	t.notify(snapshot)
}

// Current returns the current toast
func (t *Toast) Current() ToastMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// transition is called by timers; stale timers from a replaced message are ignored
func (t *Toast) transition(gen uint64, state ToastState) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}

	t.current.State = state
	t.timer = nil
	if state == ToastVisible {
		t.timer = t.after(t.duration, func() { t.transition(gen, ToastHidden) })
	}
	snapshot := t.current
	t.mu.Unlock()

	t.notify(snapshot)
}

func (t *Toast) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Toast) notify(msg ToastMessage) {
	if t.onChange != nil {
		t.onChange(msg)
	}
}
