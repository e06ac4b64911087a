package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned when a shader is created without WGSL source.
	ErrEmptySource = errors.New("empty shader source")

	// ErrMissingEntryPoint is returned when the source has no entry point for the requested stage.
	ErrMissingEntryPoint = errors.New("missing entry point")

	// ErrUnresolvedType is returned when a buffer binding references a type with no known layout.
	ErrUnresolvedType = errors.New("unresolved binding type")
)

// ShaderCompileError reports a shader that could not be parsed or compiled into a module.
// Message carries the parser or driver diagnostic, Err the underlying cause.
type ShaderCompileError struct {
	Key     string
	Stage   ShaderType
	Message string
	Err     error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("shader %q (%s): compile failed: %s", e.Key, e.Stage, e.Message)
}

func (e *ShaderCompileError) Unwrap() error {
	return e.Err
}

// NewCompileError wraps err as a ShaderCompileError, using err's text as the message.
//
// Parameters:
//   - key: the shader key
//   - stage: the failing stage
//   - err: the parser or driver error
//
// Returns:
//   - *ShaderCompileError: the typed error
func NewCompileError(key string, stage ShaderType, err error) *ShaderCompileError {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &ShaderCompileError{Key: key, Stage: stage, Message: msg, Err: err}
}
