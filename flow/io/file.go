// Package io provides file and reader nodes: Sources that read lines or byte
// chunks off the loop, and Transforms that write the strings passing through.
package io

import (
	"bufio"
	"errors"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/lguimbarda/bloem/flow/core"
	"github.com/lguimbarda/bloem/flow/transform"
)

func scanLines(r io.Reader, emit core.Next) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		emit(nil, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		emit(err, nil)
	}
}

// ReadLines creates a Source that emits each line of the file at path,
// without the trailing newline. If the file cannot be opened the Source
// raises one error.
func ReadLines(loop *core.Loop, path string, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("readLines")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		f, err := os.Open(path)
		if err != nil {
			emit(err, nil)
			return
		}
		defer f.Close()
		scanLines(f, emit)
	}, opts...)
}

// ReadLinesFrom creates a Source that emits each line read from r.
func ReadLinesFrom(loop *core.Loop, r io.Reader, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("readLinesFrom")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		scanLines(r, emit)
	}, opts...)
}

// ReadBytes creates a Source that reads the file at path in chunks of at
// most chunkSize bytes. It panics if chunkSize < 1.
func ReadBytes(loop *core.Loop, path string, chunkSize int, opts ...core.Option) *core.Source {
	if chunkSize < 1 {
		panic("bloem: ReadBytes requires chunkSize >= 1")
	}
	opts = append([]core.Option{core.WithName("readBytes")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		f, err := os.Open(path)
		if err != nil {
			emit(err, nil)
			return
		}
		defer f.Close()

		buf := make([]byte, chunkSize)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				emit(nil, chunk)
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				emit(err, nil)
				return
			}
		}
	}, opts...)
}

// WriteTo creates a Transform that writes each string to w followed by a
// newline and forwards it. Incoming errors pass through.
func WriteTo(w io.Writer, opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("writeTo")}, opts...)
	return transform.Map(core.Sync(func(line string) (string, error) {
		_, err := io.WriteString(w, line+"\n")
		return line, err
	}), opts...)
}

// LineFile is a file opened for line output. Node writes through a buffer
// that Close flushes.
type LineFile struct {
	file   *os.File
	writer *bufio.Writer
}

// CreateLines opens path for writing, truncating it if it exists.
func CreateLines(path string) (*LineFile, error) {
	return OpenLines(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

// AppendLines opens path for appending, creating it if needed.
func AppendLines(path string) (*LineFile, error) {
	return OpenLines(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// OpenLines opens path with the given flags and permissions.
func OpenLines(path string, flag int, perm os.FileMode) (*LineFile, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &LineFile{file: f, writer: bufio.NewWriter(f)}, nil
}

// Node creates a Transform that writes each string as one line of the file
// and forwards it.
func (l *LineFile) Node(opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("writeLines")}, opts...)
	return WriteTo(l.writer, opts...)
}

// Close flushes buffered lines and closes the file.
func (l *LineFile) Close() error {
	return multierr.Combine(l.writer.Flush(), l.file.Close())
}
