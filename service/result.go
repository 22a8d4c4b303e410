package service

// ErrKind classifies a failed Result so callers can react without
// parsing the message.
type ErrKind string

const (
	ErrNone       ErrKind = ""
	ErrValidation ErrKind = "validation"
	ErrNotFound   ErrKind = "not_found"
	ErrConflict   ErrKind = "conflict"
	ErrInternal   ErrKind = "internal"
)

// Result is the uniform envelope every service method returns. Failures
// never escape as errors; the message is always safe to show directly
// to the end user.
type Result struct {
	OK      bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Message string  `json:"message"`
	Kind    ErrKind `json:"error_kind,omitempty"`
}

func ok(data any, message string) Result {
	return Result{OK: true, Data: data, Message: message}
}

func fail(kind ErrKind, message string) Result {
	return Result{OK: false, Kind: kind, Message: message}
}
