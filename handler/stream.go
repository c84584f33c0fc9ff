package handler

import (
	"fmt"
	"io"
	"net/http"

	"brandvoice-chat/internal/usecase"
)

const relayBufferSize = 32 << 10

// responseWriter records whether the status line has been committed, so
// failures after that point end the stream instead of writing a JSON error.
type responseWriter struct {
	http.ResponseWriter
	started bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.started {
		return
	}
	w.started = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(p)
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// fail answers with the generic 500 unless the response already started.
func (w *responseWriter) fail() {
	if w.started {
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: usecase.MsgInternal})
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// relay copies src to w chunk by chunk, flushing after every write. The
// status line and SSE headers are committed with the first chunk (or at EOF
// for an empty stream), so a failed first read can still be answered with a
// JSON error. It returns on upstream EOF, on the first read error and on the
// first downstream write error.
func relay(w *responseWriter, src io.Reader) error {
	commit := func() {
		if w.started {
			return
		}
		setSSEHeaders(w)
		w.WriteHeader(http.StatusOK)
	}

	buf := make([]byte, relayBufferSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			commit()
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write downstream: %w", werr)
			}
			w.Flush()
		}
		if rerr == io.EOF {
			commit()
			w.Flush()
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read upstream: %w", rerr)
		}
	}
}
