// Package todo defines the task model shared by every other package.
//
// A Task is one of three kinds, distinguished by a one-letter tag:
//
//   - "T" (ToDo): a description only
//   - "D" (Deadline): a description and an opaque "by" token
//   - "E" (Event): a description and opaque "from"/"to" tokens
//
// All text fields are trimmed on construction and must be non-empty.
// Dates and times are never parsed; "June 6th" and "2024-06-06" are both
// accepted as-is.
//
// # Rendering
//
// String renders the task the way it is shown to the user:
//
//	[T][X] read book
//	[D][ ] return book (by: June 6th)
//	[E][ ] project meeting (from: Aug 6th 2pm to: 4pm)
package todo
