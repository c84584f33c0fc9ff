package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"

	"brandvoice-chat/internal/usecase"
)

// HandleFunctionURL adapts a Lambda function URL invocation (RESPONSE_STREAM
// invoke mode) to ServeHTTP. It returns as soon as the handler commits a
// status line; the body keeps streaming from the handler goroutine.
func (h *Handler) HandleFunctionURL(ctx context.Context, ev events.LambdaFunctionURLRequest) (*events.LambdaFunctionURLStreamingResponse, error) {
	req, err := newHTTPRequest(ctx, ev)
	if err != nil {
		return jsonEventResponse(ev, http.StatusBadRequest, usecase.MsgInvalidJSON), nil
	}

	pr, pw := io.Pipe()
	sw := newStreamWriter(pw)
	go func() {
		defer sw.finish()
		h.ServeHTTP(sw, req)
	}()

	select {
	case <-sw.committed:
	case <-ctx.Done():
		_ = pr.CloseWithError(ctx.Err())
		return jsonEventResponse(ev, http.StatusInternalServerError, usecase.MsgInternal), nil
	}

	return &events.LambdaFunctionURLStreamingResponse{
		StatusCode: sw.status,
		Headers:    sw.headers,
		Body:       pr,
	}, nil
}

// jsonEventResponse answers an invocation without running the handler: the
// event could not be decoded, or the invocation ended before a status line.
func jsonEventResponse(ev events.LambdaFunctionURLRequest, status int, message string) *events.LambdaFunctionURLStreamingResponse {
	header := http.Header{}
	for k, v := range ev.Headers {
		header.Set(k, v)
	}
	body, _ := json.Marshal(errorResponse{Error: message})
	return &events.LambdaFunctionURLStreamingResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID(header),
		},
		Body: bytes.NewReader(append(body, '\n')),
	}
}

func newHTTPRequest(ctx context.Context, ev events.LambdaFunctionURLRequest) (*http.Request, error) {
	body := ev.Body
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, err
		}
		body = string(decoded)
	}

	method := ev.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}
	target := ev.RawPath
	if target == "" {
		target = "/"
	}
	if ev.RawQueryString != "" {
		target += "?" + ev.RawQueryString
	}
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}
	req.RemoteAddr = ev.RequestContext.HTTP.SourceIP
	return req, nil
}

// streamWriter is an http.ResponseWriter backed by a pipe. The status and a
// snapshot of the headers are published once, on the first WriteHeader.
type streamWriter struct {
	pw     *io.PipeWriter
	header http.Header

	once      sync.Once
	committed chan struct{}
	status    int
	headers   map[string]string
}

func newStreamWriter(pw *io.PipeWriter) *streamWriter {
	return &streamWriter{
		pw:        pw,
		header:    http.Header{},
		committed: make(chan struct{}),
	}
}

func (w *streamWriter) Header() http.Header {
	return w.header
}

func (w *streamWriter) WriteHeader(status int) {
	w.once.Do(func() {
		w.status = status
		w.headers = make(map[string]string, len(w.header))
		for k, v := range w.header {
			w.headers[k] = strings.Join(v, ", ")
		}
		close(w.committed)
	})
}

func (w *streamWriter) Write(p []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.pw.Write(p)
}

// Flush is a no-op: pipe writes block until the runtime has read them.
func (w *streamWriter) Flush() {}

func (w *streamWriter) finish() {
	w.WriteHeader(http.StatusOK)
	_ = w.pw.Close()
}
