package terminal

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when a slot is asked to type while it is still typing.
var ErrBusy = errors.New("terminal: output slot is busy")

// Slot is one output row being typed into. Only one animation may target a
// slot at a time.
type Slot struct {
	out  Output
	busy atomic.Bool
}

// NewSlot wraps an output row.
func NewSlot(out Output) *Slot {
	return &Slot{out: out}
}

// Busy reports whether an animation is currently writing to the slot.
func (s *Slot) Busy() bool {
	return s.busy.Load()
}

// Type appends text to the slot one rune at a time, pausing delay after each
// rune, and returns once every rune is placed. It stops early with the
// context's error when ctx is cancelled.
func Type(ctx context.Context, slot *Slot, text string, delay time.Duration) error {
	if !slot.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer slot.busy.Store(false)

	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		slot.out.Append(r)
		if err := pause(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
