package processor

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindDecode ErrorKind = "decode"
	KindEncode ErrorKind = "encode"
	KindSpec   ErrorKind = "spec"
	KindRender ErrorKind = "render"
)

var (
	ErrDecode = errors.New("image decode failed")
	ErrEncode = errors.New("image encode failed")
	ErrSpec   = errors.New("invalid watermark spec")
	ErrRender = errors.New("watermark render failed")
)

// RenderError is the only error type Apply and Render return.
type RenderError struct {
	Kind ErrorKind
	Err  error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *RenderError) Is(target error) bool {
	switch target {
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrEncode:
		return e.Kind == KindEncode
	case ErrSpec:
		return e.Kind == KindSpec
	case ErrRender:
		return e.Kind == KindRender
	}
	return false
}

func newRenderError(kind ErrorKind, format string, args ...interface{}) *RenderError {
	return &RenderError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of a RenderError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}
