package events

import (
	"context"
	"time"
)

type Kind string

const (
	KindTransition   Kind = "transition"
	KindBranchFailed Kind = "branch_failed"
	KindFinished     Kind = "finished"
)

// Event describes one step of a render pipeline run.
type Event struct {
	RunID    string
	Variant  string
	Kind     Kind
	State    string
	Branch   string
	Rendered int
	Degraded int
	Misses   int
	// Failures lists the failed branches; set on KindFinished.
	Failures []string
	Err      string
	At       time.Time
}

type Publisher interface {
	Publish(ctx context.Context, evt Event)
	Subscribe() <-chan Event
}

type inMemory struct{ ch chan Event }

// NewInMemory returns a buffered publisher. Publish never blocks; events are
// dropped when the buffer is full.
func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan Event, buffer)}
}

func (m *inMemory) Publish(_ context.Context, evt Event) {
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) Subscribe() <-chan Event { return m.ch }
