package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// Wire types. Field names follow openapi.yaml; dates use openapi_types.Date
// so they marshal as YYYY-MM-DD.

type healthResponse struct {
	Status string `json:"status"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type vehicle struct {
	ID           openapi_types.UUID `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Capacity     int                `json:"capacity"`
	NightlyPrice domain.Money       `json:"nightly_price"`
	Currency     string             `json:"currency"`
}

type vehicleList struct {
	Data       []vehicle  `json:"data"`
	Pagination pagination `json:"pagination"`
}

type extraOption struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    domain.Money `json:"price"`
	PerNight bool         `json:"per_night"`
}

type insuranceOption struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	PricePerNight domain.Money `json:"price_per_night"`
}

type paymentMethod struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Fee  domain.Money `json:"fee"`
}

type bookingOptions struct {
	Extras         []extraOption     `json:"extras"`
	Insurance      []insuranceOption `json:"insurance"`
	PaymentMethods []paymentMethod   `json:"payment_methods"`
}

type conflict struct {
	BookingID     openapi_types.UUID `json:"booking_id"`
	StartDate     openapi_types.Date `json:"start_date"`
	EndDate       openapi_types.Date `json:"end_date"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
}

type pricing struct {
	NightlyRate domain.Money `json:"nightly_rate"`
	Nights      int          `json:"nights"`
	TotalPrice  domain.Money `json:"total_price"`
	Currency    string       `json:"currency"`
}

type availability struct {
	Available    bool               `json:"available"`
	VehicleID    openapi_types.UUID `json:"vehicle_id"`
	StartDate    openapi_types.Date `json:"start_date"`
	EndDate      openapi_types.Date `json:"end_date"`
	Nights       int                `json:"nights"`
	Conflicts    []conflict         `json:"conflicts"`
	CheckInTime  string             `json:"check_in_time"`
	CheckOutTime string             `json:"check_out_time"`
	Pricing      *pricing           `json:"pricing,omitempty"`
}

type extras struct {
	ExtraIDs      []string `json:"extra_ids"`
	Insurance     string   `json:"insurance,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
}

// createBookingRequest uses pointers so the handler can tell absent fields from
// zero values; which of them are required is decided by the service.
type createBookingRequest struct {
	VehicleID  *openapi_types.UUID `json:"vehicle_id"`
	StartDate  *openapi_types.Date `json:"start_date"`
	EndDate    *openapi_types.Date `json:"end_date"`
	Extras     *extras             `json:"extras"`
	TotalPrice *domain.Money       `json:"total_price"`
	Nights     *int                `json:"nights"`
	Notes      *string             `json:"notes"`
}

type updateNotesRequest struct {
	Notes *string `json:"notes"`
}

type booking struct {
	ID            openapi_types.UUID `json:"id"`
	VehicleID     openapi_types.UUID `json:"vehicle_id"`
	VehicleName   string             `json:"vehicle_name"`
	CustomerID    openapi_types.UUID `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	StartDate     openapi_types.Date `json:"start_date"`
	EndDate       openapi_types.Date `json:"end_date"`
	Nights        int                `json:"nights"`
	TotalPrice    domain.Money       `json:"total_price"`
	Currency      string             `json:"currency"`
	Extras        extras             `json:"extras"`
	Notes         string             `json:"notes"`
	CheckInTime   string             `json:"check_in_time"`
	CheckOutTime  string             `json:"check_out_time"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type bookingList struct {
	Data       []booking  `json:"data"`
	Pagination pagination `json:"pagination"`
}

// --- mapping helpers --------------------------------------------------------

func date(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: domain.Day(t)}
}

func toVehicle(v domain.Vehicle, currency string) vehicle {
	return vehicle{
		ID:           v.ID,
		Name:         v.Name,
		Description:  v.Description,
		Capacity:     v.Capacity,
		NightlyPrice: v.NightlyPrice,
		Currency:     currency,
	}
}

func toConflicts(cs []domain.Conflict) []conflict {
	out := make([]conflict, len(cs))
	for i, c := range cs {
		out[i] = conflict{
			BookingID:     c.BookingID,
			StartDate:     date(c.StartDate),
			EndDate:       date(c.EndDate),
			CustomerName:  c.CustomerName,
			CustomerEmail: c.CustomerEmail,
		}
	}
	return out
}

func toAvailability(a domain.Availability) availability {
	out := availability{
		Available:    a.Available,
		VehicleID:    a.VehicleID,
		StartDate:    date(a.Range.Start),
		EndDate:      date(a.Range.End),
		Nights:       a.Nights,
		Conflicts:    toConflicts(a.Conflicts),
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
	}
	if a.Pricing != nil {
		out.Pricing = &pricing{
			NightlyRate: a.Pricing.NightlyRate,
			Nights:      a.Pricing.Nights,
			TotalPrice:  a.Pricing.TotalPrice,
			Currency:    a.Pricing.Currency,
		}
	}
	return out
}

func toOptions(o domain.BookingOptions) bookingOptions {
	out := bookingOptions{
		Extras:         make([]extraOption, len(o.Extras)),
		Insurance:      make([]insuranceOption, len(o.Insurance)),
		PaymentMethods: make([]paymentMethod, len(o.PaymentMethods)),
	}
	for i, e := range o.Extras {
		out.Extras[i] = extraOption{ID: e.ID, Name: e.Name, Price: e.Price, PerNight: e.PerNight}
	}
	for i, ins := range o.Insurance {
		out.Insurance[i] = insuranceOption{ID: ins.ID, Name: ins.Name, PricePerNight: ins.PricePerNight}
	}
	for i, p := range o.PaymentMethods {
		out.PaymentMethods[i] = paymentMethod{ID: p.ID, Name: p.Name, Fee: p.Fee}
	}
	return out
}

func toBooking(b domain.BookingDetails, currency string) booking {
	ids := b.Extras.ExtraIDs
	if ids == nil {
		ids = []string{}
	}
	return booking{
		ID:            b.ID,
		VehicleID:     b.VehicleID,
		VehicleName:   b.VehicleName,
		CustomerID:    b.CustomerID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		StartDate:     date(b.StartDate),
		EndDate:       date(b.EndDate),
		Nights:        b.Nights,
		TotalPrice:    b.TotalPrice,
		Currency:      currency,
		Extras: extras{
			ExtraIDs:      ids,
			Insurance:     b.Extras.Insurance,
			PaymentMethod: b.Extras.PaymentMethod,
		},
		Notes:        b.Notes,
		CheckInTime:  domain.CheckInTime,
		CheckOutTime: domain.CheckOutTime,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (r createBookingRequest) toDomain(customerID openapi_types.UUID) domain.NewBooking {
	in := domain.NewBooking{
		CustomerID: customerID,
		TotalPrice: r.TotalPrice,
		Nights:     r.Nights,
	}
	if r.VehicleID != nil {
		in.VehicleID = *r.VehicleID
	}
	if r.StartDate != nil {
		in.StartDate = r.StartDate.Time
	}
	if r.EndDate != nil {
		in.EndDate = r.EndDate.Time
	}
	if r.Extras != nil {
		in.Extras = domain.Extras{
			ExtraIDs:      r.Extras.ExtraIDs,
			Insurance:     r.Extras.Insurance,
			PaymentMethod: r.Extras.PaymentMethod,
		}
	}
	if r.Notes != nil {
		in.Notes = *r.Notes
	}
	return in
}
