// Package export converts task lists to and from a JSON document checked
// against an embedded JSON Schema.
package export

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/monty-go/internal/storage"
	"github.com/nibzard/monty-go/internal/todo"
)

// Version is the document format version.
const Version = 1

const schemaURL = "https://github.com/nibzard/monty-go/export.schema.json"

//go:embed export.schema.json
var schemaJSON string

// Schema returns the JSON Schema of export documents.
func Schema() string {
	return schemaJSON
}

// Document is the exported form of a task list.
type Document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Tasks      []Task    `json:"tasks"`
}

// Task is one exported task. Type is "todo", "deadline" or "event".
type Task struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
	By          string `json:"by,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
}

// ValidationError reports one schema violation.
type ValidationError struct {
	Path string // JSON path of the offending value, e.g. tasks[2].by
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewDocument builds a document from a list snapshot.
func NewDocument(tasks []todo.Task, at time.Time) Document {
	doc := Document{Version: Version, ExportedAt: at.UTC(), Tasks: make([]Task, len(tasks))}
	for i := range tasks {
		t := &tasks[i]
		doc.Tasks[i] = Task{
			Type:        t.Kind().Name(),
			Description: t.Description(),
			Done:        t.IsDone(),
			By:          t.By(),
			From:        t.From(),
			To:          t.To(),
		}
	}
	return doc
}

// Write encodes tasks as an indented document stamped with the current time.
func Write(w io.Writer, tasks []todo.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(tasks, time.Now())); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Read decodes and validates a document and rebuilds its tasks. Every schema
// violation is reported as a *ValidationError inside the returned error.
func Read(r io.Reader) ([]*todo.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, schemaErrors(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("decode export: %w", err)}
	}
	return doc.ToTasks()
}

// ToTasks rebuilds the tasks of a document.
func (d Document) ToTasks() ([]*todo.Task, error) {
	tasks := make([]*todo.Task, 0, len(d.Tasks))
	for i, et := range d.Tasks {
		task, err := et.toTask()
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("tasks[%d]", i), Err: err}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// ErrUnstorable is returned for text the task file cannot hold on one record.
var ErrUnstorable = errors.New(`contains a line break or " | "`)

func (t Task) toTask() (*todo.Task, error) {
	for _, f := range []struct{ name, value string }{
		{"description", t.Description}, {"by", t.By}, {"from", t.From}, {"to", t.To},
	} {
		if strings.ContainsAny(f.value, "\r\n") || strings.Contains(f.value, storage.Delimiter) {
			return nil, &todo.ValidationError{Field: f.name, Err: ErrUnstorable}
		}
	}

	var (
		task *todo.Task
		err  error
	)
	switch t.Type {
	case todo.KindToDo.Name():
		task, err = todo.NewToDo(t.Description)
	case todo.KindDeadline.Name():
		task, err = todo.NewDeadline(t.Description, t.By)
	case todo.KindEvent.Name():
		task, err = todo.NewEvent(t.Description, t.From, t.To)
	default:
		return nil, fmt.Errorf("unknown task type %q", t.Type)
	}
	if err != nil {
		return nil, err
	}
	if t.Done {
		task.MarkDone()
	}
	return task, nil
}

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load export schema: %w", err)
			return
		}
		schemaCompiled, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile export schema: %w", schemaErr)
		}
	})
	return schemaCompiled, schemaErr
}

func schemaErrors(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errors.Join(errs...)
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// jsonPointerToPath turns "/tasks/2/by" into "tasks[2].by".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
