package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/auth"
	"github.com/pkordes/motorhome-rental/internal/domain"
)

// CreateBooking handles POST /bookings.
// The caller must be authenticated; that is checked before the body is read.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	customerID := auth.CustomerFromContext(r.Context())
	if customerID == uuid.Nil {
		s.writeError(w, r, domain.NewUnauthenticatedError())
		return
	}

	var req createBookingRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.bookings.Create(r.Context(), req.toDomain(customerID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/bookings/"+created.ID.String())
	writeJSON(w, http.StatusCreated, toBooking(created, s.currency))
}

// ListBookings handles GET /bookings, the caller's own bookings.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	p, err := pageParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.bookings.ListMine(r.Context(), auth.CustomerFromContext(r.Context()), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]booking, len(page.Items))
	for i, b := range page.Items {
		data[i] = toBooking(b, s.currency)
	}
	writeJSON(w, http.StatusOK, bookingList{
		Data:       data,
		Pagination: pagination{Page: p.Page, Limit: p.Limit, Total: page.Total},
	})
}

// GetBooking handles GET /bookings/{bookingId}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "bookingId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.bookings.Get(r.Context(), auth.CustomerFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBooking(b, s.currency))
}

// UpdateBookingNotes handles PATCH /bookings/{bookingId}/notes.
func (s *Server) UpdateBookingNotes(w http.ResponseWriter, r *http.Request) {
	customerID := auth.CustomerFromContext(r.Context())
	if customerID == uuid.Nil {
		s.writeError(w, r, domain.NewUnauthenticatedError())
		return
	}
	id, err := pathUUID(r, "bookingId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateNotesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Notes == nil {
		s.badRequest(w, r, domain.CodeMissingRequiredFields, "notes is required")
		return
	}

	b, err := s.bookings.UpdateNotes(r.Context(), customerID, id, *req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBooking(b, s.currency))
}

// decode reads a JSON body into dst. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		s.badRequest(w, r, domain.CodeMissingRequiredFields, "request body is required")
		return false
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: errorDetail{
			Code:    domain.CodePayloadTooLarge,
			Message: "request body too large",
		}})
		return false
	}
	s.badRequest(w, r, domain.CodeInvalidParameters, "request body is not valid JSON: "+jsonProblem(err))
	return false
}

// jsonProblem describes a decode error without echoing the input.
func jsonProblem(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + " has the wrong type"
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "malformed JSON"
	}
	if errors.Is(err, io.EOF) {
		return "empty body"
	}
	return "invalid value"
}
