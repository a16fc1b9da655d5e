package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"gopkg.in/gomail.v2"
)

// Attachment is an in-memory file attached to an outgoing email.
type Attachment struct {
	Filename string
	Content  []byte
}

// InvoiceEmail carries what the invoice notification template needs.
type InvoiceEmail struct {
	ParentName    string
	ChildName     string
	InvoiceNumber string
	ServiceName   string
	PeriodLabel   string
	TotalAmount   string
	DueDate       time.Time
}

// ItinerarySession is one line of the itinerary email.
type ItinerarySession struct {
	Number int
	Date   time.Time
	Time   string
}

type ItineraryEmail struct {
	ParentName  string
	ChildName   string
	ServiceName string
	Sessions    []ItinerarySession
}

type IEmailService interface {
	Send(toEmail, subject, htmlBody string, attachments ...Attachment) error
	SendInvoice(toEmail string, data InvoiceEmail, pdf []byte) error
	SendItinerary(toEmail string, data ItineraryEmail) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) Send(toEmail, subject, htmlBody string, attachments ...Attachment) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	for _, a := range attachments {
		content := a.Content
		m.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	return nil
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`
	<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
		<h2>Invoice {{.InvoiceNumber}}</h2>
		<p>Hello {{.ParentName}},</p>
		<p>The invoice for <strong>{{.ChildName}}</strong> ({{.ServiceName}}, {{.PeriodLabel}}) is attached.</p>
		<p>Amount due: <strong>{{.TotalAmount}}</strong><br>Due date: {{.DueDate.Format "02 Jan 2006"}}</p>
		<p>Please upload your proof of payment from the portal once paid.</p>
	</div>
`))

func (s *emailService) SendInvoice(toEmail string, data InvoiceEmail, pdf []byte) error {
	var body bytes.Buffer
	if err := invoiceTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render invoice email: %w", err)
	}
	subject := fmt.Sprintf("Invoice %s - %s", data.InvoiceNumber, data.PeriodLabel)
	return s.Send(toEmail, subject, body.String(), Attachment{
		Filename: data.InvoiceNumber + ".pdf",
		Content:  pdf,
	})
}

var itineraryTemplate = template.Must(template.New("itinerary").Parse(`
	<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
		<h2>Session schedule for {{.ChildName}}</h2>
		<p>Hello {{.ParentName}}, the payment was confirmed and these {{.ServiceName}} sessions are booked:</p>
		<table cellpadding="6" style="border-collapse: collapse;">
			<tr><th>#</th><th>Date</th><th>Time</th></tr>
			{{range .Sessions}}<tr><td>{{.Number}}</td><td>{{.Date.Format "Mon 02 Jan 2006"}}</td><td>{{.Time}}</td></tr>
			{{end}}
		</table>
	</div>
`))

func (s *emailService) SendItinerary(toEmail string, data ItineraryEmail) error {
	var body bytes.Buffer
	if err := itineraryTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render itinerary email: %w", err)
	}
	return s.Send(toEmail, "Your session schedule for "+data.ChildName, body.String())
}
