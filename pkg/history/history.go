package history

import (
	"os"
	"time"

	"github.com/oarkflow/json"
	"github.com/oarkflow/xid"

	"github.com/oarkflow/spp/interpreter"
)

// Entry is one evaluated input. Result holds the value's printed form and
// is empty when the input failed.
type Entry struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Result string    `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// Recorder appends entries to a history file. It is safe for concurrent use
// and for use by several processes sharing the file.
type Recorder struct {
	path     string
	appender *appender[Entry]
}

func Open(path string) (*Recorder, error) {
	a, err := newAppender[Entry](path)
	if err != nil {
		return nil, err
	}
	return &Recorder{path: path, appender: a}, nil
}

func (r *Recorder) Path() string {
	return r.path
}

// Record stores the outcome of evaluating source and returns the entry.
func (r *Recorder) Record(source string, result interpreter.Object, evalErr error) (Entry, error) {
	entry := Entry{
		ID:     xid.New().String(),
		Source: source,
		Time:   time.Now().UTC(),
	}
	if evalErr != nil {
		entry.Error = evalErr.Error()
	} else if result != nil {
		entry.Result = result.Inspect()
	}
	return entry, r.appender.Append(entry)
}

func (r *Recorder) Close() error {
	return r.appender.Close()
}

// Load reads every entry of a history file. A missing file has no entries.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
