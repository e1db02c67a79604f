package google

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when a JSON response carries a "kind" the
	// entity does not understand.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrUnsupportedContentType is returned when a response body is not in the
	// format the entity is exchanged in.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrUnsupportedEntity is returned for records the client has no mapping for.
	ErrUnsupportedEntity = errors.New("unsupported entity")

	// ErrUnsupportedOperation is returned when an entity does not support the
	// requested operation, e.g. creating a token.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrNoCalendar is returned for events that do not belong to a persisted
	// calendar.
	ErrNoCalendar = errors.New("event has no calendar")
)

// APIError is returned when the server answers with a status outside the set
// accepted for the operation. Body holds the raw response body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Response code: %d\nResponse body: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
