package command

import "github.com/nibzard/monty-go/internal/todo"

// ResultKind identifies what a Result describes.
type ResultKind int

const (
	ResultWelcome ResultKind = iota + 1
	ResultGoodbye
	ResultTaskAdded
	ResultTaskDeleted
	ResultTaskMarked
	ResultTaskUnmarked
	ResultTaskList
	ResultFoundTasks
	ResultLoadingError
	ResultCommandError
)

func (k ResultKind) String() string {
	switch k {
	case ResultWelcome:
		return "welcome"
	case ResultGoodbye:
		return "goodbye"
	case ResultTaskAdded:
		return "task_added"
	case ResultTaskDeleted:
		return "task_deleted"
	case ResultTaskMarked:
		return "task_marked"
	case ResultTaskUnmarked:
		return "task_unmarked"
	case ResultTaskList:
		return "task_list"
	case ResultFoundTasks:
		return "found_tasks"
	case ResultLoadingError:
		return "loading_error"
	case ResultCommandError:
		return "command_error"
	default:
		return "unknown"
	}
}

// Result is the display payload for one step of a session. Rendering is
// left to the caller.
type Result struct {
	Kind    ResultKind
	Task    todo.Task   // added, deleted, marked or unmarked task
	Tasks   []todo.Task // listed or found tasks
	Count   int         // list size after add/delete, or number of tasks shown
	Keyword string      // search keyword for found-tasks
	Message string      // error text for loading/command errors
	Exit    bool        // true only for goodbye
}

// Welcome is the greeting shown when a session starts.
func Welcome() Result {
	return Result{Kind: ResultWelcome}
}

// Goodbye is returned by the exit command.
func Goodbye() Result {
	return Result{Kind: ResultGoodbye, Exit: true}
}

// LoadingError reports that the saved list could not be read.
func LoadingError(err error) Result {
	return Result{Kind: ResultLoadingError, Message: err.Error()}
}

// CommandError reports a command that could not be parsed or executed.
func CommandError(err error) Result {
	return Result{Kind: ResultCommandError, Message: err.Error()}
}
