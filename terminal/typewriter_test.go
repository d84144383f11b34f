package terminal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type bufOutput struct {
	mu sync.Mutex
	b  strings.Builder
	n  int
}

func (o *bufOutput) Append(r rune) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.b.WriteRune(r)
	o.n++
}

func (o *bufOutput) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.b.String()
}

func TestType_WritesEveryRune(t *testing.T) {
	out := &bufOutput{}
	text := "Connexion établie ✓"
	if err := Type(context.Background(), NewSlot(out), text, 0); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if out.String() != text {
		t.Errorf("output = %q, want %q", out.String(), text)
	}
	if out.n != len([]rune(text)) {
		t.Errorf("Append called %d times, want %d", out.n, len([]rune(text)))
	}
}

func TestType_EmptyText(t *testing.T) {
	out := &bufOutput{}
	if err := Type(context.Background(), NewSlot(out), "", time.Second); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if out.n != 0 {
		t.Errorf("Append called %d times for empty text", out.n)
	}
}

func TestType_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bufOutput{}
	err := Type(ctx, NewSlot(out), "hello", time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Type() error = %v, want context.Canceled", err)
	}
	if out.n != 0 {
		t.Errorf("cancelled Type wrote %d runes", out.n)
	}
}

func TestType_BusySlot(t *testing.T) {
	slot := NewSlot(&bufOutput{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Type(ctx, slot, strings.Repeat("x", 100), 50*time.Millisecond) }()

	deadline := time.Now().Add(2 * time.Second)
	for !slot.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("slot never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	if err := Type(ctx, slot, "y", 0); !errors.Is(err, ErrBusy) {
		t.Errorf("second Type() error = %v, want ErrBusy", err)
	}

	cancel()
	<-done
	if slot.Busy() {
		t.Error("slot still busy after animation ended")
	}
}
