// Package handler implements the HTTP handlers for the rental API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, vehicle.go, booking.go, ...) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/service"
)

// AvailabilityServicer is the read-only availability check the handler depends on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type AvailabilityServicer interface {
	Check(ctx context.Context, q service.AvailabilityQuery) (domain.Availability, error)
}

// BookingServicer defines the booking operations exposed over HTTP.
type BookingServicer interface {
	Create(ctx context.Context, in domain.NewBooking) (domain.BookingDetails, error)
	Get(ctx context.Context, customerID, id uuid.UUID) (domain.BookingDetails, error)
	ListMine(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.BookingDetails], error)
	UpdateNotes(ctx context.Context, customerID, id uuid.UUID, notes string) (domain.BookingDetails, error)
}

// VehicleServicer defines the fleet catalog operations.
type VehicleServicer interface {
	Search(ctx context.Context, filter domain.VehicleFilter, p domain.PaginationParams) (domain.Page[domain.Vehicle], error)
	Get(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	Options(ctx context.Context) (domain.BookingOptions, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	availability AvailabilityServicer
	bookings     BookingServicer
	vehicles     VehicleServicer
	currency     string
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(availability AvailabilityServicer, bookings BookingServicer, vehicles VehicleServicer, currency string, log *slog.Logger) *Server {
	return &Server{
		availability: availability,
		bookings:     bookings,
		vehicles:     vehicles,
		currency:     currency,
		log:          log,
	}
}

// Options carries the pieces of the router that live outside this package.
// Nil middleware is skipped; a nil Metrics handler leaves /metrics unrouted.
type Options struct {
	// Authenticate attaches the bearer identity to the request context.
	Authenticate func(http.Handler) http.Handler

	// RateLimit guards booking creation.
	RateLimit func(http.Handler) http.Handler

	Metrics http.Handler
	OpenAPI []byte
}

// Handler returns a chi router serving every API route.
func Handler(s *Server, opts Options) http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorDetail{Code: "NOT_FOUND", Message: "no such route"}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: errorDetail{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"}})
	})

	r.Get("/healthz", s.GetHealth)
	if opts.OpenAPI != nil {
		r.Get("/openapi.yaml", s.openAPIHandler(opts.OpenAPI))
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		use(r, opts.Authenticate)

		r.Get("/vehicles", s.ListVehicles)
		r.Get("/vehicles/{vehicleId}", s.GetVehicle)
		r.Get("/vehicles/{vehicleId}/availability", s.CheckAvailability)
		r.Get("/booking-options", s.GetBookingOptions)

		r.With(middlewares(opts.RateLimit)...).Post("/bookings", s.CreateBooking)
		r.Get("/bookings", s.ListBookings)
		r.Get("/bookings/{bookingId}", s.GetBooking)
		r.Patch("/bookings/{bookingId}/notes", s.UpdateBookingNotes)
	})
	return r
}

func use(r chi.Router, mw func(http.Handler) http.Handler) {
	if mw != nil {
		r.Use(mw)
	}
}

func middlewares(mws ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
