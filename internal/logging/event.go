package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Event types written to the history log.
const (
	EventSessionStart = "session_start"
	EventCommand      = "command"
	EventSessionEnd   = "session_end"
)

// Event is one line of the JSONL history log.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`

	// Input is the raw command line (command events).
	Input string `json:"input,omitempty"`

	// Result is the result kind, e.g. task_added or command_error.
	Result string `json:"result,omitempty"`

	// Task is the rendered task the command touched, if any.
	Task string `json:"task,omitempty"`

	// Count is the list size after the command.
	Count int `json:"count,omitempty"`

	Error string `json:"error,omitempty"`
}

// EventWriter writes events as JSON lines.
type EventWriter struct {
	w io.Writer
}

// NewEventWriter returns a writer that appends JSON lines to w.
func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{w: w}
}

// Write encodes one event followed by a newline.
func (e *EventWriter) Write(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal history event: %w", err)
	}
	data = append(data, '\n')
	_, err = e.w.Write(data)
	return err
}
