// Helpers for building various types of error responses.

package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Shyp/joblog/rest"
)

func new405(r *http.Request) *rest.Error {
	return &rest.Error{
		Title:      "Method not allowed",
		ID:         "method_not_allowed",
		Instance:   r.URL.Path,
		StatusCode: http.StatusMethodNotAllowed,
	}
}

func new404(r *http.Request) *rest.Error {
	return &rest.Error{
		Title:      "Resource not found",
		ID:         "not_found",
		Instance:   r.URL.Path,
		StatusCode: http.StatusNotFound,
	}
}

func insecure403(r *http.Request) *rest.Error {
	return &rest.Error{
		Title:      "Server not available over HTTP",
		ID:         "insecure_request",
		Detail:     "For your security, please use an encrypted connection",
		Instance:   r.URL.Path,
		StatusCode: http.StatusForbidden,
	}
}

func mutationOverGet(r *http.Request) *rest.Error {
	return &rest.Error{
		Title:      "Mutations must be sent with POST",
		ID:         "method_not_allowed",
		Instance:   r.URL.Path,
		StatusCode: http.StatusMethodNotAllowed,
	}
}

func new429(r *http.Request) *rest.Error {
	return &rest.Error{
		Title:      "Too many requests. Please slow down",
		ID:         "too_many_requests",
		Instance:   r.URL.Path,
		StatusCode: http.StatusTooManyRequests,
	}
}

func new503(r *http.Request, detail string) *rest.Error {
	return &rest.Error{
		Title:      "Database unavailable",
		ID:         "database_unavailable",
		Detail:     detail,
		Instance:   r.URL.Path,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func newTooLarge(r *http.Request) *rest.Error {
	return &rest.Error{
		Title:      fmt.Sprintf("Request body is too large (%dKB max)", MaxRequestBodySize/1024),
		ID:         "entity_too_large",
		Instance:   r.URL.Path,
		StatusCode: http.StatusRequestEntityTooLarge,
	}
}

// createEmptyErr returns a rest.Error indicating the request omits a required
// field.
func createEmptyErr(field string, path string) *rest.Error {
	return &rest.Error{
		Title:      fmt.Sprintf("Missing required field: %s", field),
		Detail:     fmt.Sprintf("Please include a %s in the request", field),
		ID:         "missing_parameter",
		Instance:   path,
		StatusCode: http.StatusBadRequest,
	}
}

func invalidRequest(path string) *rest.Error {
	return &rest.Error{
		Title:      "Invalid request: bad JSON. Double check the types of the fields you sent",
		ID:         "invalid_request",
		Instance:   path,
		StatusCode: http.StatusBadRequest,
	}
}

// writeError writes err with its StatusCode.
func writeError(w http.ResponseWriter, err *rest.Error) {
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(err)
}

func notFound(w http.ResponseWriter, err *rest.Error) {
	writeError(w, err)
}

func badRequest(w http.ResponseWriter, r *http.Request, err *rest.Error) {
	Logger.Info("bad request", "status", 400, "method", r.Method, "path", r.URL.Path, "err", err.Error())
	err.StatusCode = http.StatusBadRequest
	writeError(w, err)
}

func forbidden(w http.ResponseWriter, err *rest.Error) {
	writeError(w, err)
}
