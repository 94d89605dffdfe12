package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailSender sends transactional email. Wrapped in an interface so handler
// tests can swap the sendgrid client out.
type MailSender interface {
	Send(toEmail, toName, subject, plainText, htmlContent string) error
}

type sendgridMailer struct{}

// NewSendgridMailer returns a MailSender backed by sendgrid. The API key and
// sender address come from the environment.
func NewSendgridMailer() MailSender {
	return sendgridMailer{}
}

func (sendgridMailer) Send(toEmail, toName, subject, plainText, htmlContent string) error {
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "no-reply@pulseguard.app"
	}
	from := mail.NewEmail("PulseGuard", fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
