package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/internal/validation"
)

const maxBodyBytes = 64 << 10

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	contactService service.ContactService
	detail         ErrorDetail
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService, detail ErrorDetail) *ContactHandler {
	return &ContactHandler{contactService: contactService, detail: detail}
}

// Submit handles POST /api/contact.
// All four fields must be non-blank; format rules are enforced by storage.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req validation.Fields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if missing := validation.MissingRequired(req); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Please provide all required fields"})
		return
	}

	msg := model.NewContactSubmission(req)
	if err := h.contactService.Submit(r.Context(), msg); err != nil {
		slog.Error("error submitting contact form", "submission_id", msg.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "Error submitting contact form",
			Error:   h.detail.of(err),
		})
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Message: "Contact form submitted successfully",
		Data:    msg,
	})
}

// List handles GET /api/contact. The route must be wrapped in bearer auth.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.contactService.List(r.Context())
	if err != nil {
		slog.Error("error fetching contact submissions", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "Error fetching contact submissions",
			Error:   h.detail.of(err),
		})
		return
	}

	// Return [] not null for empty lists
	if subs == nil {
		subs = []*model.ContactSubmission{}
	}
	count := len(subs)
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Count: &count, Data: subs})
}
