package rewire

import (
	"fmt"
	"io"

	"github.com/starkandwayne/goutils/ansi"
)

// ErrorHandler is the error sink the engine reports through. Components
// never fail asynchronously; they reject locally and optionally report
// here. Callers treat NErrors() > 0 after parsing as fatal.
type ErrorHandler interface {
	Errorf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	LErrorf(landmark, format string, args ...interface{})
	NErrors() int
}

// FileErrorHandler writes diagnostics to a stream, errors in red and
// warnings in yellow when color is enabled, and counts errors.
type FileErrorHandler struct {
	w       io.Writer
	context string
	nerrors int
}

// NewFileErrorHandler returns a handler writing to w. A non-empty context
// (usually the program name) prefixes every message.
func NewFileErrorHandler(w io.Writer, context string) *FileErrorHandler {
	return &FileErrorHandler{w: w, context: context}
}

func (h *FileErrorHandler) prefix() string {
	if h.context == "" {
		return ""
	}
	return h.context + ": "
}

// Errorf reports an error.
func (h *FileErrorHandler) Errorf(format string, args ...interface{}) {
	h.nerrors++
	fmt.Fprintf(h.w, "%s%s\n", h.prefix(), ansi.Sprintf("@R{"+format+"}", args...))
}

// Warningf reports a warning; warnings do not count as errors.
func (h *FileErrorHandler) Warningf(format string, args ...interface{}) {
	fmt.Fprintf(h.w, "%s%s\n", h.prefix(), ansi.Sprintf("@Y{warning: "+format+"}", args...))
}

// LErrorf reports an error against a source landmark.
func (h *FileErrorHandler) LErrorf(landmark, format string, args ...interface{}) {
	h.nerrors++
	if landmark == "" {
		fmt.Fprintf(h.w, "%s%s\n", h.prefix(), ansi.Sprintf("@R{"+format+"}", args...))
		return
	}
	fmt.Fprintf(h.w, "%s%s: %s\n", h.prefix(), landmark, ansi.Sprintf("@R{"+format+"}", args...))
}

// NErrors returns the running error count.
func (h *FileErrorHandler) NErrors() int { return h.nerrors }
