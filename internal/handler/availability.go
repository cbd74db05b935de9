package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/motorhome-rental/internal/service"
)

// CheckAvailability handles GET /vehicles/{vehicleId}/availability.
// start_date and end_date are required; a missing one is reported by the
// service as MISSING_PARAMETERS, a malformed one here as INVALID_PARAMETERS.
func (s *Server) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathUUID(r, "vehicleId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var start, end *openapi_types.Date
	var exclude *openapi_types.UUID
	params := []struct {
		name string
		dest any
	}{
		{"start_date", &start},
		{"end_date", &end},
		{"exclude_booking_id", &exclude},
	}
	for _, p := range params {
		if err := queryParam(r, p.name, p.dest); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	q := service.AvailabilityQuery{VehicleID: vehicleID, ExcludeBookingID: exclude}
	if start != nil {
		q.StartDate = start.Time
	}
	if end != nil {
		q.EndDate = end.Time
	}

	result, err := s.availability.Check(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailability(result))
}
