package directory

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/alfredfullstack2024/tiendasappfrontend/pkg/errors"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httpclient"
)

// Outcome classifies one attempt against one candidate.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeTransport   Outcome = "transport"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeCircuitOpen Outcome = "circuit_open"
)

// Attempt records a single request of a fallback sequence.
type Attempt struct {
	Candidate int
	URL       string
	Outcome   Outcome
	Status    int
	Err       error
}

// TransportError is a failed attempt against one candidate. It is recovered
// by advancing to the next candidate.
type TransportError struct {
	URL     string
	Outcome Outcome
	Status  int
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d): %v", e.URL, e.Outcome, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.URL, e.Outcome, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.URL, e.Outcome, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.URL, e.Outcome)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when no candidate produced a usable answer.
type ExhaustedError struct {
	Op       string
	Attempts []Attempt
}

// NotFound reports whether any candidate reached the server and got a
// well-formed "does not exist" answer.
func (e *ExhaustedError) NotFound() bool {
	for _, a := range e.Attempts {
		if a.Outcome == OutcomeNotFound {
			return true
		}
	}
	return false
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("directory %s: no candidates", e.Op)
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("directory %s: %d candidates exhausted, last %s: %s",
		e.Op, len(e.Attempts), last.URL, last.Outcome)
}

func (e *ExhaustedError) Unwrap() error {
	if e.NotFound() {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrServiceUnavail
}

func (e *ExhaustedError) result() string {
	if e.NotFound() {
		return "not_found"
	}
	return "error"
}

// Default user-facing messages.
const (
	MsgReviewFailed       = "No pudimos enviar tu reseña. Intenta nuevamente."
	MsgRegistrationFailed = "Error registrando la tienda. Intente nuevamente."
)

// SubmissionError means the directory refused or failed an otherwise valid
// submission. Message is safe to show to the user.
type SubmissionError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directory %s rejected (status %d): %s: %v", e.Op, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("directory %s rejected (status %d): %s", e.Op, e.Status, e.Message)
}

// Unwrap maps 4xx answers to ErrRejected and everything else to ErrServiceUnavail.
func (e *SubmissionError) Unwrap() error {
	if e.Rejected() {
		return apperrors.ErrRejected
	}
	return apperrors.ErrServiceUnavail
}

// Rejected reports whether the server answered and refused the payload.
func (e *SubmissionError) Rejected() bool {
	return httpclient.IsClientError(e.Status)
}

// AppError converts the error for the JSON API.
func (e *SubmissionError) AppError() *apperrors.AppError {
	if e.Rejected() {
		appErr := apperrors.Rejected(e.Message)
		if e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity {
			appErr.Status = e.Status
		}
		return appErr
	}
	return apperrors.ServiceUnavailable(e.Message)
}

// IsNotFound reports whether err is a not-found outcome of a fallback sequence.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
