package handler

import (
	"net/http"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// ListVehicles handles GET /vehicles.
// Supports ?min_capacity=, ?max_price= (decimal) and ?page= / ?limit=.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	p, err := pageParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var minCapacity *int
	if err := queryParam(r, "min_capacity", &minCapacity); err != nil {
		s.writeError(w, r, err)
		return
	}
	var filter domain.VehicleFilter
	if minCapacity != nil {
		filter.MinCapacity = *minCapacity
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		price, err := domain.ParseMoney(raw)
		if err != nil {
			s.badRequest(w, r, domain.CodeInvalidParameters, "max_price must be a decimal amount")
			return
		}
		filter.MaxNightlyPrice = &price
	}

	page, err := s.vehicles.Search(r.Context(), filter, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]vehicle, len(page.Items))
	for i, v := range page.Items {
		data[i] = toVehicle(v, s.currency)
	}
	writeJSON(w, http.StatusOK, vehicleList{
		Data:       data,
		Pagination: pagination{Page: p.Page, Limit: p.Limit, Total: page.Total},
	})
}

// GetVehicle handles GET /vehicles/{vehicleId}.
func (s *Server) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.vehicles.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicle(v, s.currency))
}

// GetBookingOptions handles GET /booking-options.
func (s *Server) GetBookingOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.vehicles.Options(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOptions(opts))
}
