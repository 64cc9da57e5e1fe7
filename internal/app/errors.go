package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
	appvalidator "github.com/metinatakli/cinex/internal/validator"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrNotFound       = "The requested resource not found"
	ErrRateLimited    = "rate limit exceeded"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri, "request_id", middleware.GetReqID(r.Context()))
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) serviceUnavailableResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Retry-After", "1")
	app.errorResponse(w, r, http.StatusServiceUnavailable, err.Error())
}

func (app *Application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, ErrRateLimited)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	issues := make([]api.ValidationError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		issues = append(issues, api.ValidationError{
			Field: lowerFirst(fe.Field()),
			Issue: appvalidator.ValidationMessage(fe),
		})
	}

	app.validationErrorResponse(w, r, issues)
}

func (app *Application) validationErrorResponse(w http.ResponseWriter, r *http.Request, issues []api.ValidationError) {
	resp := api.ValidationErrorResponse{
		Message:          "One or more fields have invalid values",
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: issues,
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// invalidParamResponse answers path parameters that could not be decoded.
func (app *Application) invalidParamResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.badRequestResponse(w, r, err)
}

// openapiErrorResponse maps request validation failures: broken parameters
// are bad requests, body schema violations are validation errors.
func (app *Application) openapiErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		app.badRequestResponse(w, r, err)
		return
	}

	if reqErr.Parameter != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid value for parameter %s", reqErr.Parameter.Name))
		return
	}

	var schemaErr *openapi3.SchemaError
	if reqErr.RequestBody != nil && errors.As(reqErr.Err, &schemaErr) {
		field := strings.Join(schemaErr.JSONPointer(), ".")
		if field == "" {
			field = "body"
		}

		app.validationErrorResponse(w, r, []api.ValidationError{{Field: field, Issue: schemaErr.Reason}})
		return
	}

	app.badRequestResponse(w, r, errors.New(reqErr.Reason))
}

// domainErrorResponse renders the errors of the selection and booking flow.
func (app *Application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrShowNotFound),
		errors.Is(err, domain.ErrTimeSlotNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		app.notFoundResponseWithErr(w, r, err)

	case errors.Is(err, domain.ErrNoTimeSelected),
		errors.Is(err, domain.ErrIncompleteSelection),
		errors.Is(err, domain.ErrInvalidSeat):
		app.badRequestResponse(w, r, err)

	case errors.Is(err, domain.ErrSeatOccupied),
		errors.Is(err, domain.ErrSelectionLimit),
		errors.Is(err, domain.ErrUnpaidBooking),
		errors.Is(err, domain.ErrAlreadyPaid):
		app.editConflictResponseWithErr(w, r, err)

	case errors.Is(err, domain.ErrOccupancyLoading),
		errors.Is(err, domain.ErrOccupancyUnavailable):
		app.serviceUnavailableResponseWithErr(w, r, err)

	default:
		app.serverErrorResponse(w, r, err)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}
