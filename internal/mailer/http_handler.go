package mailer

import (
	"net/http"

	"bookfinder/internal/httpx"
)

type HTTPHandler struct {
	contact *ContactService
}

func NewHTTPHandler(contact *ContactService) *HTTPHandler {
	return &HTTPHandler{contact: contact}
}

// Contact handles POST /v1/contact
func (h *HTTPHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var form ContactForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(form); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if err := h.contact.Submit(r.Context(), form); err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "MAIL_ERROR",
			"There was an error sending your message. Please try again or email us directly.", nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{
		"message": "Thank you for your message! We'll get back to you soon.",
	}, nil)
}
