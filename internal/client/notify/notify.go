// Package notify is the fire-and-forget channel for transient user
// notifications.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Severity of a notification. The client only reports failures.
type Severity string

const Error Severity = "error"

// Notification is one transient message.
type Notification struct {
	Severity Severity
	Message  string
}

// Notifier displays notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// Writer prints notifications as "[severity] message" lines.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "[%s] %s\n", n.Severity, n.Message)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	list []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

// All returns a copy of what was recorded.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.list...)
}

// Last returns the most recent notification and whether there is one.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.list) == 0 {
		return Notification{}, false
	}
	return r.list[len(r.list)-1], true
}
