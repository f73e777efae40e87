// Package http provides HTTP client nodes. Requests run off the loop through
// Loop.Go and their responses re-enter the graph on the loop's goroutine.
// Non-2xx responses are emitted as data; only transport failures are errors.
package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lguimbarda/bloem/flow/core"
)

// Response contains HTTP response data.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func do(ctx context.Context, client *http.Client, method, url, contentType string, body io.Reader) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Response{}, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read %s %s: %w", method, url, err)
	}
	return Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

func single(loop *core.Loop, name string, call func() (Response, error)) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		resp, err := call()
		if err != nil {
			emit(err, nil)
			return
		}
		emit(nil, resp)
	}, core.WithName(name))
}

// Request creates a Source that makes one HTTP request and emits the Response.
func Request(ctx context.Context, loop *core.Loop, client *http.Client, method, url string, body io.Reader) *core.Source {
	return single(loop, "httpRequest", func() (Response, error) {
		return do(ctx, client, method, url, "", body)
	})
}

// Get creates a Source that makes a GET request with http.DefaultClient.
func Get(ctx context.Context, loop *core.Loop, url string) *core.Source {
	return single(loop, "httpGet", func() (Response, error) {
		return do(ctx, http.DefaultClient, http.MethodGet, url, "", nil)
	})
}

// Post creates a Source that makes a POST request with http.DefaultClient.
func Post(ctx context.Context, loop *core.Loop, url, contentType string, body io.Reader) *core.Source {
	return single(loop, "httpPost", func() (Response, error) {
		return do(ctx, http.DefaultClient, http.MethodPost, url, contentType, body)
	})
}

// PostJSON creates a Source that posts jsonBody as application/json.
func PostJSON(ctx context.Context, loop *core.Loop, url, jsonBody string) *core.Source {
	return Post(ctx, loop, url, "application/json", strings.NewReader(jsonBody))
}

// GetLines creates a Source that makes a GET request and emits the response
// body line by line as it is read.
func GetLines(ctx context.Context, loop *core.Loop, client *http.Client, url string) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			emit(err, nil)
			return
		}
		resp, err := client.Do(req)
		if err != nil {
			emit(err, nil)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			emit(nil, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			emit(err, nil)
		}
	}, core.WithName("httpGetLines"))
}

// GetEach creates a sequential Transform that makes a GET request for each
// incoming URL string and emits the Response. Requests run one at a time in
// arrival order. Incoming errors pass through.
func GetEach(ctx context.Context, loop *core.Loop, client *http.Client, opts ...core.Option) *core.BoundedTransform {
	opts = append([]core.Option{core.WithName("httpGetEach"), core.WithScheduler(loop)}, opts...)
	return core.NewSequential(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		url, err := core.As[string](data)
		if err != nil {
			next(err, nil)
			return
		}
		loop.Go(func() func() {
			resp, err := do(ctx, client, http.MethodGet, url, "", nil)
			return func() {
				if err != nil {
					next(err, nil)
					return
				}
				next(nil, resp)
			}
		})
	}, opts...)
}
