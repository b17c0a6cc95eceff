// Package httputil holds shared render helpers for the JSON API handlers.
package httputil

import (
	"errors"
	"net/http"

	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/go-chi/render"
)

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerError(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		ErrorText:      err.Error(),
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

var ErrUnauthorized = &ErrResponse{HTTPStatusCode: http.StatusUnauthorized, StatusText: "Not authenticated."}

var ErrForbidden = &ErrResponse{HTTPStatusCode: http.StatusForbidden, StatusText: "Access denied."}

func errConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

// RenderErr maps domain errors onto HTTP statuses and renders the response.
func RenderErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gerr.ErrOrderNotFound),
		errors.Is(err, gerr.ErrProductNotFound),
		errors.Is(err, gerr.ErrVendorNotFound),
		errors.Is(err, gerr.ErrUserNotFound):
		render.Render(w, r, ErrNotFound)
	case errors.Is(err, gerr.ErrInsufficientStock),
		errors.Is(err, gerr.ErrInvalidTransition),
		errors.Is(err, gerr.ErrReviewAlreadyExists):
		render.Render(w, r, errConflict(err))
	case errors.Is(err, gerr.ErrDeliveryNotConfirmed),
		errors.Is(err, gerr.ErrInvalidPeriod):
		render.Render(w, r, ErrInvalidRequest(err))
	case errors.Is(err, gerr.ErrNotAuthenticated):
		render.Render(w, r, ErrUnauthorized)
	case errors.Is(err, gerr.ErrAccessDenied):
		render.Render(w, r, ErrForbidden)
	default:
		render.Render(w, r, ErrInternalServerError(err))
	}
}
