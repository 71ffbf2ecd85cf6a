// Package notify sends the transactional welcome email for new leads.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ciia-mx/leadflow/pkg/logging"
)

const defaultServicePhrase = "nuestros servicios"

// Config holds configuration for the welcome mailer.
type Config struct {
	APIKey     string
	FromEmail  string
	FromName   string
	BookingURL string
	// Host overrides the SendGrid API host. Used by tests.
	Host string
}

// WelcomeReceipt identifies a sent welcome message at the provider.
type WelcomeReceipt struct {
	MessageID string
	Provider  string
}

// Mailer sends welcome emails via SendGrid.
type Mailer struct {
	client     *sendgrid.Client
	apiKey     string
	host       string
	fromEmail  string
	fromName   string
	bookingURL string
	logger     *logging.Logger
}

// New creates a welcome mailer. API key and sender address are required.
func New(cfg Config, logger *logging.Logger) (*Mailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("notify: sendgrid API key is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("notify: sender email is required")
	}
	if cfg.FromName == "" {
		cfg.FromName = "Javier Virtual"
	}
	if cfg.BookingURL == "" {
		cfg.BookingURL = "https://cal.com"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Mailer{
		client:     sendgrid.NewSendClient(cfg.APIKey),
		apiKey:     cfg.APIKey,
		host:       cfg.Host,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		bookingURL: cfg.BookingURL,
		logger:     logger,
	}, nil
}

// SendWelcome sends the templated welcome message. service falls back to a
// generic phrase when absent.
func (m *Mailer) SendWelcome(ctx context.Context, toEmail, toName, service string) (*WelcomeReceipt, error) {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	subject := "¡Gracias por contactarnos!"
	html := welcomeHTML(toName, service, m.bookingURL)
	message := mail.NewSingleEmail(from, subject, to, welcomeText(toName, service, m.bookingURL), html)

	client := m.client
	if m.host != "" {
		client = &sendgrid.Client{Request: sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)}
	}
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("notify: sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	receipt := &WelcomeReceipt{Provider: "sendgrid"}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		receipt.MessageID = ids[0]
	}
	m.logger.Info("welcome email sent", "to", toEmail, "status", response.StatusCode)
	return receipt, nil
}

func serviceOrDefault(service string) string {
	if service == "" {
		return defaultServicePhrase
	}
	return service
}

func welcomeHTML(toName, service, bookingURL string) string {
	return fmt.Sprintf(`<h1>Hola %s, soy Javier Virtual</h1>
<p>Gracias por interesarte en %s. Ya registramos tu información en nuestro CRM.</p>
<p>Puedes agendar una llamada cuando prefieras en el siguiente enlace:</p>
<p><a href=%q>Agenda aquí</a></p>
<p>También me pondré en contacto por teléfono y WhatsApp para avanzar más rápido.</p>
<p>- Equipo Automatización Leads</p>`, toName, serviceOrDefault(service), bookingURL)
}

func welcomeText(toName, service, bookingURL string) string {
	return fmt.Sprintf("Hola %s, gracias por interesarte en %s. Agenda una llamada aquí: %s",
		toName, serviceOrDefault(service), bookingURL)
}
