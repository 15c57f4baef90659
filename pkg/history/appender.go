package history

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/oarkflow/json"
)

// appender adds elements to a JSON array stored in a file. The file stays a
// valid array after every write; other processes are kept out with an
// advisory lock next to the file.
type appender[T any] struct {
	file           *os.File
	fileLock       *flock.Flock
	mu             sync.Mutex
	tailBufferSize int
}

func newAppender[T any](filePath string) (*appender[T], error) {
	f, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	a := &appender[T]{
		file:           f,
		fileLock:       flock.New(filePath + ".lock"),
		tailBufferSize: 1024,
	}
	if err := a.validateOrInitialize(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return a, nil
}

func (a *appender[T]) validateOrInitialize() error {
	if err := a.fileLock.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = a.fileLock.Unlock()
	}()

	fi, err := a.file.Stat()
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		if _, err := a.file.WriteAt([]byte("[\n]\n"), 0); err != nil {
			return err
		}
		return a.file.Sync()
	}
	trimmed, err := a.readTrimmed(fi.Size())
	if err != nil {
		return err
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return errors.New("invalid history file: missing opening bracket")
	}
	if trimmed[len(trimmed)-1] != ']' {
		return errors.New("invalid history file: missing closing bracket")
	}
	return nil
}

func (a *appender[T]) readTrimmed(size int64) ([]byte, error) {
	head := make([]byte, size)
	if _, err := a.file.ReadAt(head, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return bytes.TrimSpace(head), nil
}

func (a *appender[T]) Append(element T) error {
	return a.AppendBatch([]T{element})
}

// AppendBatch rewrites only the tail of the file: the closing bracket is cut
// off and the new elements are written followed by a fresh bracket.
func (a *appender[T]) AppendBatch(elements []T) error {
	if len(elements) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fileLock.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = a.fileLock.Unlock()
	}()

	fi, err := a.file.Stat()
	if err != nil {
		return err
	}
	tailSize := int64(a.tailBufferSize)
	if fi.Size() < tailSize {
		tailSize = fi.Size()
	}
	offset := fi.Size() - tailSize
	buf := make([]byte, tailSize)
	if _, err := a.file.ReadAt(buf, offset); err != nil && err != io.EOF {
		return err
	}
	lastBracket := bytes.LastIndexByte(buf, ']')
	if lastBracket == -1 {
		return errors.New("invalid history file: missing closing bracket")
	}
	pos := lastBracket - 1
	for pos >= 0 && unicode.IsSpace(rune(buf[pos])) {
		pos--
	}
	if pos < 0 {
		return errors.New("invalid history file: unable to find content before closing bracket")
	}

	prefix := []byte(",\n  ")
	if buf[pos] == '[' {
		prefix = []byte("\n  ")
	}
	data := prefix
	for i, element := range elements {
		raw, err := json.Marshal(element)
		if err != nil {
			return err
		}
		if i > 0 {
			data = append(data, []byte(",\n  ")...)
		}
		data = append(data, raw...)
	}
	data = append(data, []byte("\n]\n")...)

	truncateAt := offset + int64(pos) + 1
	if err := a.file.Truncate(truncateAt); err != nil {
		return err
	}
	if _, err := a.file.WriteAt(data, truncateAt); err != nil {
		return err
	}
	return a.file.Sync()
}

func (a *appender[T]) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}
