// Package httpx turns handler results into HTTP responses and holds the gin
// middleware shared by the services and the gateway.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-go-template/internal/shared"
)

// OutcomeKind is the transport decision for a finished result.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeNoContent
	OutcomeBadRequest
	OutcomeNotFound
	OutcomeServerError
)

// String returns the string representation of the OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "OK"
	case OutcomeNoContent:
		return "NoContent"
	case OutcomeBadRequest:
		return "BadRequest"
	case OutcomeNotFound:
		return "NotFound"
	default:
		return "ServerError"
	}
}

// Status returns the HTTP status code of the kind.
func (k OutcomeKind) Status() int {
	switch k {
	case OutcomeOK:
		return http.StatusOK
	case OutcomeNoContent:
		return http.StatusNoContent
	case OutcomeBadRequest:
		return http.StatusBadRequest
	case OutcomeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is what the HTTP layer renders. Body is set for OutcomeOK, Errors
// for OutcomeBadRequest.
type Outcome[U any] struct {
	Kind   OutcomeKind
	Body   U
	Errors map[string][]string
}

// Translate decides the response for r. The first matching rule wins:
// not found, save failure, validation failure, any other failure, an empty
// result, a nil success value, and finally a mapped 200 body.
func Translate[T, U any](r shared.Result[T], mapper func(T) U) Outcome[U] {
	if r.IsFailure() {
		if ok, _ := r.HasError(shared.KindNotFound); ok {
			return Outcome[U]{Kind: OutcomeNotFound}
		}
		if ok, _ := r.HasError(shared.KindSave); ok {
			return Outcome[U]{Kind: OutcomeServerError}
		}
		if ok, _ := r.HasError(shared.KindValidation); ok {
			return Outcome[U]{Kind: OutcomeBadRequest, Errors: shared.FieldErrors(r)}
		}
		return Outcome[U]{Kind: OutcomeServerError}
	}
	if r.IsEmpty() {
		return Outcome[U]{Kind: OutcomeServerError}
	}
	if r.IsNil() {
		return Outcome[U]{Kind: OutcomeNoContent}
	}
	return Outcome[U]{Kind: OutcomeOK, Body: mapper(r.Value())}
}

// ValidationMessage is the summary sent with every 400 answer.
const ValidationMessage = "One or more errors occurred!"

// ErrorResponse is the body of a 400 answer.
type ErrorResponse struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors"`
}

// Write renders o on c. Only OK and BadRequest carry a body.
func Write[U any](c *gin.Context, o Outcome[U]) {
	status := o.Kind.Status()
	switch o.Kind {
	case OutcomeOK:
		c.JSON(status, o.Body)
	case OutcomeBadRequest:
		c.JSON(status, ErrorResponse{StatusCode: status, Message: ValidationMessage, Errors: o.Errors})
	default:
		c.Status(status)
	}
}

// Respond translates r and writes the outcome.
func Respond[T, U any](c *gin.Context, r shared.Result[T], mapper func(T) U) {
	Write(c, Translate(r, mapper))
}

// Identity is a mapper for results that are already in response shape.
func Identity[T any](v T) T { return v }
