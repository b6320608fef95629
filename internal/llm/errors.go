package llm

import "errors"

// Sentinel errors distinguishing soft-fail conditions at call sites.
// Components catch these with errors.Is and degrade the affected tier
// instead of failing the whole operation.
var (
	// ErrNoBackend indicates no LLM backend is configured. Extraction and
	// summarization treat this as a precondition miss, not a failure.
	ErrNoBackend = errors.New("no LLM backend configured")

	// ErrUnavailable indicates the backend was unreachable, timed out, or
	// returned an error response.
	ErrUnavailable = errors.New("LLM backend unavailable")

	// ErrMalformedOutput indicates the backend answered but the response
	// could not be decoded into the expected JSON shape, even after
	// stripping markdown code fences.
	ErrMalformedOutput = errors.New("malformed LLM output")
)
