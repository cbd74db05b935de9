package domain

// Extra is a bookable add-on (bike rack, bedding set, ...).
// PerNight extras are charged once per night, others once per booking.
type Extra struct {
	ID       string
	Name     string
	Price    Money
	PerNight bool
}

// InsuranceOption is an insurance tier charged per night.
type InsuranceOption struct {
	ID            string
	Name          string
	PricePerNight Money
}

// PaymentMethod carries a flat processing fee charged once per booking.
type PaymentMethod struct {
	ID   string
	Name string
	Fee  Money
}

// BookingOptions is the full add-on catalog clients need for quoting.
type BookingOptions struct {
	Extras         []Extra
	Insurance      []InsuranceOption
	PaymentMethods []PaymentMethod
}

// QuoteLine is one priced component of a Quote.
type QuoteLine struct {
	Label  string
	Amount Money
}

// Quote is the server-computed price of a booking.
type Quote struct {
	Nights      int
	NightlyRate Money
	Base        Money
	Lines       []QuoteLine
	Total       Money
}

// Add appends a priced line and adds it to the total.
func (q *Quote) Add(label string, amount Money) {
	q.Lines = append(q.Lines, QuoteLine{Label: label, Amount: amount})
	q.Total += amount
}
