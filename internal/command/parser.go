package command

import (
	"strconv"
	"strings"

	"github.com/nibzard/monty-go/internal/todo"
)

const (
	verbBye      = "bye"
	verbList     = "list"
	verbMark     = "mark"
	verbUnmark   = "unmark"
	verbDelete   = "delete"
	verbTodo     = "todo"
	verbDeadline = "deadline"
	verbEvent    = "event"
	verbFind     = "find"

	markerBy   = "/by "
	markerFrom = "/from "
	markerTo   = "/to "
)

// Parse turns one input line into a Command. Unknown verbs and missing
// arguments are reported as a *ParseError. A bare "find" is rejected with
// ErrEmptyKeyword; an empty keyword reaches every task only through
// tasklist.List.Find.
func Parse(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, &ParseError{Err: ErrEmptyCommand}
	}

	switch trimmed {
	case verbBye:
		return Command{Kind: KindExit}, nil
	case verbList:
		return Command{Kind: KindList}, nil
	}

	verb, rest, ok := splitVerb(trimmed)
	if !ok {
		return Command{}, &ParseError{Err: ErrUnknownCommand}
	}

	switch verb {
	case verbMark:
		return parseIndex(verb, KindMark, rest)
	case verbUnmark:
		return parseIndex(verb, KindUnmark, rest)
	case verbDelete:
		return parseIndex(verb, KindDelete, rest)
	case verbTodo:
		return parseTodo(rest)
	case verbDeadline:
		return parseDeadline(rest)
	case verbEvent:
		return parseEvent(rest)
	case verbFind:
		return parseFind(rest)
	}
	return Command{}, &ParseError{Err: ErrUnknownCommand}
}

// splitVerb matches "<verb> <rest>" or a bare "<verb>" against the verbs
// that take an argument. Verbs are case-sensitive.
func splitVerb(line string) (verb, rest string, ok bool) {
	for _, v := range []string{verbMark, verbUnmark, verbDelete, verbTodo, verbDeadline, verbEvent, verbFind} {
		if line == v {
			return v, "", true
		}
		if strings.HasPrefix(line, v+" ") {
			return v, strings.TrimSpace(line[len(v)+1:]), true
		}
	}
	return "", "", false
}

func parseIndex(verb string, kind Kind, rest string) (Command, error) {
	n, err := strconv.Atoi(rest)
	if err != nil {
		return Command{}, &ParseError{Verb: verb, Err: ErrInvalidTaskNumber}
	}
	return Command{Kind: kind, Index: n}, nil
}

func parseTodo(rest string) (Command, error) {
	if rest == "" {
		return Command{}, &ParseError{Verb: verbTodo, Err: ErrEmptyDescription}
	}
	task, err := todo.NewToDo(rest)
	if err != nil {
		return Command{}, &ParseError{Verb: verbTodo, Err: err}
	}
	return Command{Kind: KindAdd, Task: task}, nil
}

func parseDeadline(rest string) (Command, error) {
	byIdx := strings.Index(rest, markerBy)
	if byIdx < 0 {
		return Command{}, &ParseError{Verb: verbDeadline, Err: ErrMissingBy}
	}

	description := strings.TrimSpace(rest[:byIdx])
	by := strings.TrimSpace(rest[byIdx+len(markerBy):])
	if description == "" {
		return Command{}, &ParseError{Verb: verbDeadline, Err: ErrEmptyDescription}
	}
	if by == "" {
		return Command{}, &ParseError{Verb: verbDeadline, Err: ErrEmptyBy}
	}

	task, err := todo.NewDeadline(description, by)
	if err != nil {
		return Command{}, &ParseError{Verb: verbDeadline, Err: err}
	}
	return Command{Kind: KindAdd, Task: task}, nil
}

func parseEvent(rest string) (Command, error) {
	fromIdx := strings.Index(rest, markerFrom)
	toIdx := strings.Index(rest, markerTo)
	switch {
	case fromIdx < 0:
		return Command{}, &ParseError{Verb: verbEvent, Err: ErrMissingFrom}
	case toIdx < 0:
		return Command{}, &ParseError{Verb: verbEvent, Err: ErrMissingTo}
	case fromIdx >= toIdx:
		return Command{}, &ParseError{Verb: verbEvent, Err: ErrFromAfterTo}
	}

	description := strings.TrimSpace(rest[:fromIdx])
	from := strings.TrimSpace(rest[fromIdx+len(markerFrom) : toIdx])
	to := strings.TrimSpace(rest[toIdx+len(markerTo):])
	switch {
	case description == "":
		return Command{}, &ParseError{Verb: verbEvent, Err: ErrEmptyDescription}
	case from == "":
		return Command{}, &ParseError{Verb: verbEvent, Err: ErrEmptyFrom}
	case to == "":
		return Command{}, &ParseError{Verb: verbEvent, Err: ErrEmptyTo}
	}

	task, err := todo.NewEvent(description, from, to)
	if err != nil {
		return Command{}, &ParseError{Verb: verbEvent, Err: err}
	}
	return Command{Kind: KindAdd, Task: task}, nil
}

func parseFind(rest string) (Command, error) {
	if rest == "" {
		return Command{}, &ParseError{Verb: verbFind, Err: ErrEmptyKeyword}
	}
	return Command{Kind: KindFind, Keyword: rest}, nil
}
