// Package json provides JSON encoding and decoding nodes. Decoding accepts
// string and []byte payloads; stream decoders read from an io.Reader off the
// loop and emit one tuple per document.
package json

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/lguimbarda/bloem/flow/core"
	"github.com/lguimbarda/bloem/flow/transform"
)

// ErrNotArray is raised by DecodeArray when the input does not start with '['.
var ErrNotArray = errors.New("json: expected array")

func payload(data any) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, &core.TypeError{Want: "string or []byte", Got: data}
	}
}

// Decode creates a Transform that decodes each string or []byte value as one
// JSON document into a T. Invalid JSON is raised as an error; incoming
// errors pass through.
func Decode[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("jsonDecode")}, opts...)
	return transform.Map(core.Sync(func(data any) (T, error) {
		var value T
		b, err := payload(data)
		if err != nil {
			return value, err
		}
		err = json.Unmarshal(b, &value)
		return value, err
	}), opts...)
}

// Encode creates a Transform that encodes each T value as a JSON string.
func Encode[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("jsonEncode")}, opts...)
	return transform.Map(core.Sync(func(value T) (string, error) {
		b, err := json.Marshal(value)
		return string(b), err
	}), opts...)
}

// EncodeBytes creates a Transform that encodes each T value as JSON bytes.
func EncodeBytes[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("jsonEncodeBytes")}, opts...)
	return transform.Map(core.Sync(func(value T) ([]byte, error) {
		return json.Marshal(value)
	}), opts...)
}

// DecodeStream creates a Source that decodes a stream of JSON documents
// (NDJSON / JSON Lines) from r. A decode error is raised and ends the stream.
func DecodeStream[T any](loop *core.Loop, r io.Reader, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("jsonDecodeStream")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		decoder := json.NewDecoder(r)
		for {
			var value T
			if err := decoder.Decode(&value); err != nil {
				if !errors.Is(err, io.EOF) {
					emit(err, nil)
				}
				return
			}
			emit(nil, value)
		}
	}, opts...)
}

// DecodeArray creates a Source that reads one JSON array from r and emits
// each element.
func DecodeArray[T any](loop *core.Loop, r io.Reader, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("jsonDecodeArray")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		decoder := json.NewDecoder(r)

		token, err := decoder.Token()
		if err != nil {
			emit(err, nil)
			return
		}
		if delim, ok := token.(json.Delim); !ok || delim != '[' {
			emit(ErrNotArray, nil)
			return
		}

		for decoder.More() {
			var value T
			if err := decoder.Decode(&value); err != nil {
				emit(err, nil)
				return
			}
			emit(nil, value)
		}
		if _, err := decoder.Token(); err != nil {
			emit(err, nil)
		}
	}, opts...)
}
