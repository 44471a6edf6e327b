// Package notify defines the outbound event interface between the automation
// core and whatever presentation layer is attached (CLI logs, the serve
// surface's websocket stream, tests).
package notify

import (
	"log/slog"
	"sync"
)

// Workflow names the top-level automation flows.
type Workflow string

const (
	WorkflowExport Workflow = "export"
	WorkflowImport Workflow = "import"
	WorkflowSales  Workflow = "sales"
)

// Result is the terminal outcome of a workflow run. Every run produces
// exactly one Result.
type Result struct {
	Workflow Workflow `json:"workflow"`
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	FilePath string   `json:"filePath,omitempty"`
}

// Notifier receives progress and outcome events from the automation core.
type Notifier interface {
	// Status reports human-readable progress text.
	Status(msg string)
	// Error reports a categorized, user-visible failure.
	Error(msg, errorType string)
	// Finished reports the single terminal outcome of a run.
	Finished(res Result)
}

// Event is the wire form of a notification, used by the broadcaster and the
// websocket stream.
type Event struct {
	Type      string  `json:"type"` // "status" | "error" | "finished"
	Message   string  `json:"message,omitempty"`
	ErrorType string  `json:"errorType,omitempty"`
	Result    *Result `json:"result,omitempty"`
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) Status(msg string) {
	n.Log.Info("status", "message", msg)
}

func (n *LogNotifier) Error(msg, errorType string) {
	n.Log.Error("automation error", "message", msg, "error_type", errorType)
}

func (n *LogNotifier) Finished(res Result) {
	n.Log.Info("finished",
		"workflow", string(res.Workflow),
		"success", res.Success,
		"message", res.Message,
		"file_path", res.FilePath,
	)
}

// Broadcaster fans events out to any number of subscribers. Slow subscribers
// drop events rather than blocking the automation run.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called to release it.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
}

func (b *Broadcaster) Status(msg string) {
	b.publish(Event{Type: "status", Message: msg})
}

func (b *Broadcaster) Error(msg, errorType string) {
	b.publish(Event{Type: "error", Message: msg, ErrorType: errorType})
}

func (b *Broadcaster) Finished(res Result) {
	b.publish(Event{Type: "finished", Result: &res})
}

// Multi forwards every notification to all wrapped notifiers.
type Multi []Notifier

func (m Multi) Status(msg string) {
	for _, n := range m {
		n.Status(msg)
	}
}

func (m Multi) Error(msg, errorType string) {
	for _, n := range m {
		n.Error(msg, errorType)
	}
}

func (m Multi) Finished(res Result) {
	for _, n := range m {
		n.Finished(res)
	}
}
