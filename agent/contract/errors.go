package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrDataService     = errors.New("data service failed")
)

// ErrorKind is the machine-readable code carried by a DomainError.
type ErrorKind string

const (
	ErrorKindValidation              ErrorKind = "ValidationError"
	ErrorKindNotFound                ErrorKind = "NotFoundError"
	ErrorKindCustomerNotFound        ErrorKind = "CustomerNotFound"
	ErrorKindClassificationAmbiguous ErrorKind = "ClassificationAmbiguous"
	ErrorKindCollaboratorFailure     ErrorKind = "CollaboratorFailure"
)

// KindOf maps a wrapped sentinel to its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	default:
		return ErrorKindCollaboratorFailure
	}
}
