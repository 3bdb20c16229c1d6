package tempus

import (
	"fmt"
	"net/http"
)

// StatusError is a non-200 answer. Body is the raw response for diagnosis.
type StatusError struct {
	Code int
	Body []byte

	// Location is X-Inertia-Location, set on 409 when the server's asset
	// version no longer matches ours.
	Location string
}

func (e *StatusError) Error() string {
	switch {
	case e.Code == http.StatusConflict && e.Location != "":
		return fmt.Sprintf("request failed with status %d (inertia version mismatch, reload %s)", e.Code, e.Location)
	case e.Code == 419:
		return fmt.Sprintf("request failed with status %d (csrf token or session expired)", e.Code)
	default:
		return fmt.Sprintf("request failed with status %d", e.Code)
	}
}

// DecodeError is a 200 answer whose body is not JSON.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode json response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
