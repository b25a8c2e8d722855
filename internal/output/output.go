package output

import (
	"fmt"
	"io"
	"os"
)

// FileError reports a failed read or write of a local file.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ReadFile loads a local document in one shot.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}
	return data, nil
}

// Write delivers a fully-prepared payload. An empty path means the payload
// goes to stdout verbatim; otherwise it is written to the file and a
// confirmation line goes to stdout instead, so payload and status text never
// share a stream. A missing trailing newline is added either way.
func Write(stdout io.Writer, path string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}
	fmt.Fprintf(stdout, "Environment variables written to: %s\n", path)
	return nil
}
