// Package command parses input lines into commands and executes them against
// a task list.
package command

import (
	"github.com/nibzard/monty-go/internal/tasklist"
	"github.com/nibzard/monty-go/internal/todo"
)

// Kind identifies a command variant.
type Kind int

const (
	KindAdd Kind = iota + 1
	KindDelete
	KindMark
	KindUnmark
	KindList
	KindFind
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindDelete:
		return "delete"
	case KindMark:
		return "mark"
	case KindUnmark:
		return "unmark"
	case KindList:
		return "list"
	case KindFind:
		return "find"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Command is a parsed command. Only the fields its Kind uses are set:
// Task for Add, Index for Delete/Mark/Unmark, Keyword for Find.
type Command struct {
	Kind    Kind
	Task    *todo.Task
	Index   int
	Keyword string
}

// IsExit reports whether the command ends the session.
func (c Command) IsExit() bool {
	return c.Kind == KindExit
}

// Execute runs c against list and describes the outcome.
func Execute(c Command, list *tasklist.List) (Result, error) {
	switch c.Kind {
	case KindAdd:
		if err := list.Add(c.Task); err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultTaskAdded, Task: *c.Task, Count: list.Size()}, nil

	case KindDelete:
		removed, err := list.Delete(c.Index)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultTaskDeleted, Task: removed, Count: list.Size()}, nil

	case KindMark:
		task, err := list.MarkDone(c.Index)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultTaskMarked, Task: task}, nil

	case KindUnmark:
		task, err := list.MarkNotDone(c.Index)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultTaskUnmarked, Task: task}, nil

	case KindList:
		return Result{Kind: ResultTaskList, Tasks: list.Tasks(), Count: list.Size()}, nil

	case KindFind:
		matches := list.Find(c.Keyword)
		return Result{Kind: ResultFoundTasks, Tasks: matches, Count: len(matches), Keyword: c.Keyword}, nil

	case KindExit:
		return Goodbye(), nil
	}
	return Result{}, &ParseError{Err: ErrUnknownCommand}
}
