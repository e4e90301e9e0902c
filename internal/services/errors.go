package services

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// UpstreamError marks a failure of an external dependency (the generative
// model or the renderer toolchain). Callers map it to a generic 500.
type UpstreamError struct{ Message string }

func (e *UpstreamError) Error() string { return e.Message }
