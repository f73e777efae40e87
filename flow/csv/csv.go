// Package csv provides CSV nodes: Sources that read records from files or
// readers off the loop, and Transforms that encode, decode and write records.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/lguimbarda/bloem/flow/core"
	"github.com/lguimbarda/bloem/flow/filter"
	"github.com/lguimbarda/bloem/flow/transform"
)

// ReaderOption configures a CSV reader.
type ReaderOption func(*csv.Reader)

// WithComma sets the field delimiter (default is ',').
func WithComma(comma rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comma = comma
	}
}

// WithComment sets the comment character. Lines beginning with this
// character are ignored.
func WithComment(comment rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comment = comment
	}
}

// WithFieldsPerRecord sets the expected number of fields per record.
// If positive, each record must have exactly that many fields.
// If 0, the number is set to the first record's field count.
// If negative, no check is made and records may have variable fields.
func WithFieldsPerRecord(n int) ReaderOption {
	return func(r *csv.Reader) {
		r.FieldsPerRecord = n
	}
}

// WithLazyQuotes allows lazy quotes in quoted fields.
func WithLazyQuotes(lazy bool) ReaderOption {
	return func(r *csv.Reader) {
		r.LazyQuotes = lazy
	}
}

// WithTrimLeadingSpace trims leading whitespace from fields.
func WithTrimLeadingSpace(trim bool) ReaderOption {
	return func(r *csv.Reader) {
		r.TrimLeadingSpace = trim
	}
}

func newReader(r io.Reader, opts []ReaderOption) *csv.Reader {
	reader := csv.NewReader(r)
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// readAll emits every record from reader. A malformed record is raised and
// reading continues; any other read error is raised and ends the stream.
func readAll(reader *csv.Reader, emit core.Next) {
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			emit(err, nil)
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return
		}
		emit(nil, record)
	}
}

// ReadRecords creates a Source that emits each row of the CSV file at path as
// a []string. Failing to open the file is raised as a single error.
func ReadRecords(loop *core.Loop, path string, opts ...ReaderOption) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		f, err := os.Open(path)
		if err != nil {
			emit(err, nil)
			return
		}
		defer f.Close()
		readAll(newReader(f, opts), emit)
	}, core.WithName("csvReadRecords"))
}

// ReadRecordsFrom creates a Source that emits each row read from r.
func ReadRecordsFrom(loop *core.Loop, r io.Reader, opts ...ReaderOption) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		readAll(newReader(r, opts), emit)
	}, core.WithName("csvReadRecordsFrom"))
}

// SkipHeader creates a Transform that drops the first record.
func SkipHeader() *core.Transform {
	return filter.Skip(1, core.WithName("skipHeader"))
}

// WriterOption configures a CSV writer.
type WriterOption func(*csv.Writer)

// WithWriterComma sets the field delimiter for writing (default is ',').
func WithWriterComma(comma rune) WriterOption {
	return func(w *csv.Writer) {
		w.Comma = comma
	}
}

// WithUseCRLF sets whether to use \r\n as the line terminator.
func WithUseCRLF(useCRLF bool) WriterOption {
	return func(w *csv.Writer) {
		w.UseCRLF = useCRLF
	}
}

// WriteRecordsTo creates a Transform that writes each []string record to w
// and forwards it. Every record is flushed as it is written, since the graph
// has no end-of-stream signal to flush on.
func WriteRecordsTo(w io.Writer, opts ...WriterOption) *core.Transform {
	writer := csv.NewWriter(w)
	for _, opt := range opts {
		opt(writer)
	}
	return transform.Map(core.Sync(func(record []string) ([]string, error) {
		if err := writer.Write(record); err != nil {
			return nil, err
		}
		writer.Flush()
		return record, writer.Error()
	}), core.WithName("csvWriteRecords"))
}

// DecodeCSV creates a Transform that parses each string or []byte chunk as
// CSV and emits its records one by one. Each chunk is parsed on its own; a
// malformed chunk is raised as one error.
func DecodeCSV(opts ...ReaderOption) *core.Transform {
	return transform.Expand(core.Sync(func(data any) ([][]string, error) {
		var r io.Reader
		switch v := data.(type) {
		case []byte:
			r = bytes.NewReader(v)
		case string:
			r = strings.NewReader(v)
		default:
			return nil, &core.TypeError{Want: "string or []byte", Got: data}
		}
		return newReader(r, opts).ReadAll()
	}), core.WithName("csvDecode"))
}

// EncodeCSV creates a Transform that encodes each []string record to bytes.
func EncodeCSV(opts ...WriterOption) *core.Transform {
	return transform.Map(core.Sync(func(record []string) ([]byte, error) {
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		for _, opt := range opts {
			opt(writer)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
		writer.Flush()
		return buf.Bytes(), writer.Error()
	}), core.WithName("csvEncode"))
}
