package renderer

import "errors"

var (
	// ErrNoSurface is returned when no surface is given and no backend is injected.
	ErrNoSurface = errors.New("renderer: no surface for default backend")

	// ErrNoProgramBound is returned by uniform uploads and draws with no bound program.
	ErrNoProgramBound = errors.New("renderer: no program bound")

	// ErrNoVertexBuffer is returned by attribute binding and draws with no bound vertex buffer.
	ErrNoVertexBuffer = errors.New("renderer: no vertex buffer bound")

	// ErrAttributesNotBound is returned by draws before BindAttributes for the bound program.
	ErrAttributesNotBound = errors.New("renderer: vertex attributes not bound")

	// ErrVertexLayoutMismatch is returned when bound attributes disagree with the program's vertex input.
	ErrVertexLayoutMismatch = errors.New("renderer: vertex layout does not match program")

	// ErrUniformSlotsExhausted is returned when a program's per-frame uniform slots are used up.
	ErrUniformSlotsExhausted = errors.New("renderer: uniform slots exhausted")

	// ErrUniformSize is returned when uploaded uniform data exceeds the program's uniform block.
	ErrUniformSize = errors.New("renderer: uniform data exceeds block size")

	// ErrNoUniforms is returned by draws of a program with uniforms before any upload this frame.
	ErrNoUniforms = errors.New("renderer: no uniforms uploaded for program")

	// ErrUnknownHandle is returned for handles the renderer did not create or already released.
	ErrUnknownHandle = errors.New("renderer: unknown handle")

	// ErrInvalidDrawRange is returned for draws with too few vertices or past the buffer end.
	ErrInvalidDrawRange = errors.New("renderer: invalid draw range")

	// ErrFrameNotStarted is returned by draws outside BeginFrame/EndFrame.
	ErrFrameNotStarted = errors.New("renderer: frame not started")

	// ErrFrameInProgress is returned by BeginFrame while a frame is already open.
	ErrFrameInProgress = errors.New("renderer: frame already in progress")
)
