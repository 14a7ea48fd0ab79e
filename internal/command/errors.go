package command

import (
	"errors"
	"fmt"
)

// Parse failure reasons. Every ParseError wraps one of these.
var (
	ErrEmptyCommand      = errors.New("command cannot be empty")
	ErrUnknownCommand    = errors.New("I'm sorry, but I don't know what that means :-(")
	ErrInvalidTaskNumber = errors.New("please provide a valid task number")
	ErrEmptyDescription  = errors.New("the description cannot be empty")
	ErrMissingBy         = errors.New("the deadline command requires a '/by' parameter")
	ErrEmptyBy           = errors.New("the '/by' parameter cannot be empty")
	ErrMissingFrom       = errors.New("the event command requires a '/from' parameter")
	ErrMissingTo         = errors.New("the event command requires a '/to' parameter")
	ErrFromAfterTo       = errors.New("the '/from' parameter must come before the '/to' parameter")
	ErrEmptyFrom         = errors.New("the '/from' parameter cannot be empty")
	ErrEmptyTo           = errors.New("the '/to' parameter cannot be empty")
	ErrEmptyKeyword      = errors.New("please provide a keyword to search for")
)

// ParseError reports a malformed command line.
type ParseError struct {
	Verb string // recognised verb, empty when the verb itself was the problem
	Err  error
}

func (e *ParseError) Error() string {
	if e.Verb != "" {
		return fmt.Sprintf("%s: %v", e.Verb, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying reason.
func (e *ParseError) Unwrap() error {
	return e.Err
}
