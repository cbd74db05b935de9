// Package notify delivers booking emails to customers.
package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// message is one rendered email.
type message struct {
	Subject string
	Text    string
	HTML    string
}

var htmlTemplate = template.Must(template.New("booking").Parse(`<html>
	<body>
		<h2>{{.Heading}}</h2>
		<p>Hello {{.CustomerName}},</p>
		<p>{{.Lead}}</p>
		<table>
			<tr><td>Vehicle</td><td>{{.VehicleName}}</td></tr>
			<tr><td>Pick-up</td><td>{{.Start}} from {{.CheckIn}}</td></tr>
			<tr><td>Return</td><td>{{.End}} by {{.CheckOut}}</td></tr>
			<tr><td>Nights</td><td>{{.Nights}}</td></tr>
			<tr><td>Total</td><td>{{.Total}} {{.Currency}}</td></tr>
			<tr><td>Reference</td><td>{{.Reference}}</td></tr>
		</table>
	</body>
</html>`))

type messageData struct {
	Heading      string
	Lead         string
	CustomerName string
	VehicleName  string
	Start        string
	End          string
	CheckIn      string
	CheckOut     string
	Nights       int
	Total        string
	Currency     string
	Reference    string
}

func newMessageData(b domain.BookingDetails, currency, heading, lead string) messageData {
	return messageData{
		Heading:      heading,
		Lead:         lead,
		CustomerName: b.CustomerName,
		VehicleName:  b.VehicleName,
		Start:        b.StartDate.Format(domain.DateLayout),
		End:          b.EndDate.Format(domain.DateLayout),
		CheckIn:      domain.CheckInTime,
		CheckOut:     domain.CheckOutTime,
		Nights:       b.Nights,
		Total:        b.TotalPrice.String(),
		Currency:     currency,
		Reference:    b.ID.String(),
	}
}

func render(d messageData, subject string) (message, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, d); err != nil {
		return message{}, fmt.Errorf("notify.render: %w", err)
	}
	text := fmt.Sprintf("Hello %s,\n\n%s\n\nVehicle: %s\nPick-up: %s from %s\nReturn: %s by %s\nNights: %d\nTotal: %s %s\nReference: %s\n",
		d.CustomerName, d.Lead, d.VehicleName, d.Start, d.CheckIn, d.End, d.CheckOut, d.Nights, d.Total, d.Currency, d.Reference)
	return message{Subject: subject, Text: text, HTML: buf.String()}, nil
}

func confirmationMessage(b domain.BookingDetails, currency string) (message, error) {
	d := newMessageData(b, currency, "Booking confirmed", "Your motorhome booking is confirmed.")
	return render(d, fmt.Sprintf("Booking confirmed: %s, %s to %s", b.VehicleName, d.Start, d.End))
}

func reminderMessage(b domain.BookingDetails, currency string) (message, error) {
	d := newMessageData(b, currency, "See you tomorrow", "Your rental starts tomorrow. Please bring your driving licence.")
	return render(d, fmt.Sprintf("Reminder: pick up %s on %s", b.VehicleName, d.Start))
}
