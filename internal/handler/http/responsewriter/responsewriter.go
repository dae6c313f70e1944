// Package responsewriter provides an http.ResponseWriter that remembers what
// was sent, for middleware that reports on completed requests.
package responsewriter

import "net/http"

// Recorder wraps an http.ResponseWriter and tracks the status code and body size.
// Only the first WriteHeader call takes effect, matching net/http.
type Recorder struct {
	http.ResponseWriter
	status  int
	size    int
	written bool
}

// Wrap returns w unchanged if it is already a Recorder, so nested middleware
// share one set of counters.
func Wrap(w http.ResponseWriter) *Recorder {
	if rec, ok := w.(*Recorder); ok {
		return rec
	}
	return &Recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *Recorder) WriteHeader(status int) {
	if r.written {
		return
	}
	r.status = status
	r.written = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *Recorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming.
func (r *Recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		if !r.written {
			r.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// Status is the status sent, or 200 if the handler never wrote a header.
func (r *Recorder) Status() int { return r.status }

// Size is the number of body bytes written.
func (r *Recorder) Size() int { return r.size }

// Written reports whether headers have gone out.
func (r *Recorder) Written() bool { return r.written }

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
