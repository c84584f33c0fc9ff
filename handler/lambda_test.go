package handler

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"brandvoice-chat/internal/usecase"
)

func makeEvent(method, body string) events.LambdaFunctionURLRequest {
	return events.LambdaFunctionURLRequest{
		RawPath: "/api/chat",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    body,
		RequestContext: events.LambdaFunctionURLRequestContext{
			HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{
				Method:   method,
				Path:     "/api/chat",
				SourceIP: "203.0.113.7",
			},
		},
	}
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(raw)
}

func TestHandleFunctionURL_StreamsBody(t *testing.T) {
	stream := &chunkedStream{chunks: []string{"data: {\"type\":\"x\"}\n\n", "data: {\"type\":\"y\"}\n\n"}}
	uc := &stubUseCase{stream: stream}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	resp, err := h.HandleFunctionURL(context.Background(), makeEvent(http.MethodPost, validBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Headers["Content-Type"])
	require.Equal(t, "no-cache", resp.Headers["Cache-Control"])
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])

	require.Equal(t, "data: {\"type\":\"x\"}\n\ndata: {\"type\":\"y\"}\n\n", readAll(t, resp.Body))
	require.Equal(t, validBody, uc.body)
}

func TestHandleFunctionURL_DecodesBase64Body(t *testing.T) {
	uc := &stubUseCase{stream: &chunkedStream{}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	ev := makeEvent(http.MethodPost, base64.StdEncoding.EncodeToString([]byte(validBody)))
	ev.IsBase64Encoded = true
	resp, err := h.HandleFunctionURL(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, readAll(t, resp.Body))
	require.Equal(t, validBody, uc.body)
}

func TestHandleFunctionURL_InvalidBase64(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	ev := makeEvent(http.MethodPost, "%%%not-base64")
	ev.IsBase64Encoded = true
	ev.Headers["x-correlation-id"] = "corr-9"
	resp, err := h.HandleFunctionURL(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "corr-9", resp.Headers["X-Correlation-Id"])
	require.JSONEq(t, `{"error":"Invalid JSON"}`, readAll(t, resp.Body))
	require.Zero(t, uc.calls)
}

func TestHandleFunctionURL_ErrorResponses(t *testing.T) {
	cases := []struct {
		name   string
		method string
		err    error
		status int
		body   string
	}{
		{name: "method", method: http.MethodGet, status: http.StatusMethodNotAllowed, body: `{"error":"Method not allowed"}`},
		{name: "missing method", method: "", status: http.StatusMethodNotAllowed, body: `{"error":"Method not allowed"}`},
		{name: "prompt key", method: http.MethodPost, err: &usecase.Error{Code: usecase.ErrorInvalidInput, Message: usecase.MsgInvalidPromptKey}, status: http.StatusBadRequest, body: `{"error":"Invalid promptKey"}`},
		{name: "not configured", method: http.MethodPost, err: &usecase.Error{Code: usecase.ErrorNotConfigured, Message: usecase.MsgNotConfigured}, status: http.StatusInternalServerError, body: `{"error":"API key not configured"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHandler(&stubUseCase{err: tc.err})
			require.NoError(t, err)

			resp, err := h.HandleFunctionURL(context.Background(), makeEvent(tc.method, validBody))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, "application/json", resp.Headers["Content-Type"])
			require.JSONEq(t, tc.body, readAll(t, resp.Body))
		})
	}
}

func TestHandleFunctionURL_ClosedBodyStopsRelay(t *testing.T) {
	stream := &chunkedStream{chunks: []string{"a", "b", "c"}}
	h, err := NewHandler(&stubUseCase{stream: stream})
	require.NoError(t, err)

	resp, err := h.HandleFunctionURL(context.Background(), makeEvent(http.MethodPost, validBody))
	require.NoError(t, err)

	buf := make([]byte, 1)
	_, err = resp.Body.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "a", string(buf))
	require.NoError(t, resp.Body.(io.Closer).Close())

	require.Eventually(t, func() bool {
		stream.mu.Lock()
		defer stream.mu.Unlock()
		return stream.closed
	}, time.Second, 10*time.Millisecond)
}

func TestHandleFunctionURL_CancelledBeforeCommitIsJSON500(t *testing.T) {
	uc := &stubUseCase{block: make(chan struct{}), stream: &chunkedStream{}}
	defer close(uc.block)
	h, err := NewHandler(uc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := makeEvent(http.MethodPost, validBody)
	ev.Headers["x-correlation-id"] = "corr-cancel"
	resp, err := h.HandleFunctionURL(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.Equal(t, "corr-cancel", resp.Headers["X-Correlation-Id"])
	require.JSONEq(t, `{"error":"Something went wrong. Try again."}`, readAll(t, resp.Body))
}

func TestNewHTTPRequest_CopiesEvent(t *testing.T) {
	ev := makeEvent(http.MethodPost, validBody)
	ev.RawQueryString = "a=1"
	ev.Headers["x-correlation-id"] = "corr-1"

	req, err := newHTTPRequest(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "/api/chat", req.URL.Path)
	require.Equal(t, "a=1", req.URL.RawQuery)
	require.Equal(t, "corr-1", req.Header.Get("X-Correlation-Id"))
	require.Equal(t, "203.0.113.7", req.RemoteAddr)
	require.Equal(t, validBody, readAll(t, req.Body))
	require.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "application/json"))
}
