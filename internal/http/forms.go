package http

import (
	"errors"
	"net/http"

	"github.com/darshanbajgain/darshan-blog-temp/internal/forms"
	goerrors "github.com/goliatone/go-errors"
)

func (api *API) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if api.forms == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload forms.SubscribeRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid json payload"})
		return
	}
	result, err := api.forms.Subscribe(r.Context(), payload)
	if err != nil {
		api.writeFormError(w, err, forms.MessageSubscribeFailed)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handleContact(w http.ResponseWriter, r *http.Request) {
	if api.forms == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload forms.ContactRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid json payload"})
		return
	}
	result, err := api.forms.Contact(r.Context(), payload)
	if err != nil {
		api.writeFormError(w, err, forms.MessageContactFailed)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeFormError keeps provider details out of reader-facing responses.
func (api *API) writeFormError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		status, payload := mapError(err)
		writeJSON(w, status, payload)
	case errors.Is(err, forms.ErrServiceUnavailable), goerrors.IsCategory(err, goerrors.CategoryOperation):
		api.logger.Warn("http.form.unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable", Message: fallback})
	default:
		api.logger.Error("http.form.failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: fallback})
	}
}
