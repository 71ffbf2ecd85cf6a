// Package outreach places automated intro calls and sends fallback text
// messages through the Twilio REST API.
package outreach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ciia-mx/leadflow/pkg/logging"
)

// Message channels, in fallback preference order.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
)

// ErrNoMessageSender is returned when neither a usable WhatsApp sender nor an
// SMS sender is configured for the fallback message.
var ErrNoMessageSender = errors.New("outreach: no text message sender configured")

var successStatuses = map[string]struct{}{
	"queued":      {},
	"ringing":     {},
	"in-progress": {},
	"completed":   {},
}

// Config controls how the outreach client behaves.
type Config struct {
	AccountSID    string
	AuthToken     string
	VoiceCallerID string
	// WhatsAppFrom enables the rich-messaging channel when set.
	WhatsAppFrom string
	// SMSFrom enables the plain-text fallback channel when set.
	SMSFrom            string
	DefaultCountryCode string
	BookingURL         string

	// BaseURL overrides the Twilio API host. Used by tests.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the Twilio endpoints the orchestrator needs.
type Client struct {
	accountSID         string
	authToken          string
	voiceCallerID      string
	whatsAppFrom       string
	smsFrom            string
	defaultCountryCode string
	bookingURL         string
	baseURL            string
	httpClient         *http.Client
	logger             *logging.Logger
}

// New creates a configured Client. Account credentials and the voice caller
// ID are required; message senders are optional.
func New(cfg Config) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("outreach: twilio credentials are required")
	}
	if cfg.VoiceCallerID == "" {
		return nil, errors.New("outreach: voice caller ID is required")
	}
	countryCode := cfg.DefaultCountryCode
	if countryCode == "" {
		countryCode = "+52"
	}
	bookingURL := cfg.BookingURL
	if bookingURL == "" {
		bookingURL = "https://cal.com"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		accountSID:         cfg.AccountSID,
		authToken:          cfg.AuthToken,
		voiceCallerID:      cfg.VoiceCallerID,
		whatsAppFrom:       cfg.WhatsAppFrom,
		smsFrom:            cfg.SMSFrom,
		defaultCountryCode: countryCode,
		bookingURL:         bookingURL,
		baseURL:            baseURL,
		httpClient:         httpClient,
		logger:             logger,
	}, nil
}

// CallOutcome reports how a placed call ended up at the provider.
type CallOutcome struct {
	CallID string
	Status string
	Error  string
}

// IsSuccessful reports whether the outcome means the call was initiated.
// Initiated is the success criterion: queued and ringing count.
func IsSuccessful(outcome *CallOutcome) bool {
	if outcome == nil {
		return false
	}
	_, ok := successStatuses[outcome.Status]
	return ok
}

// PlaceIntroCall dials the lead with a localized greeting. Provider-level
// rejections come back as a failed outcome, not an error, so the caller
// handles them uniformly with unsuccessful call statuses.
func (c *Client) PlaceIntroCall(ctx context.Context, toNumber, leadName string) (*CallOutcome, error) {
	form := url.Values{}
	form.Set("To", c.NormalizeNumber(toNumber))
	form.Set("From", c.voiceCallerID)
	form.Set("Twiml", introTwiML(leadName))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	resp, err := c.postForm(ctx, endpoint, form)
	if err != nil {
		c.logger.Warn("intro call rejected", "to", toNumber, "error", err)
		return &CallOutcome{Status: "failed", Error: err.Error()}, nil
	}
	c.logger.Info("intro call placed", "to", toNumber, "sid", resp.SID, "status", resp.Status)
	return &CallOutcome{CallID: resp.SID, Status: resp.Status}, nil
}

// FollowupMessage identifies a sent fallback message.
type FollowupMessage struct {
	MessageID      string
	Channel        string
	FallbackReason string
}

// SendFallbackMessage texts the lead a booking link when the intro call did
// not succeed. WhatsApp is preferred; SMS is the last resort, recording why
// WhatsApp was skipped over.
func (c *Client) SendFallbackMessage(ctx context.Context, toNumber, leadName string) (*FollowupMessage, error) {
	normalized := c.NormalizeNumber(toNumber)
	body := fmt.Sprintf(
		"Hola %s, soy Javier Virtual. Intenté llamarte y quiero ayudarte a agendar una sesión. Puedes reservar aquí: %s",
		leadName, c.bookingURL,
	)

	var fallbackReason string
	if c.whatsAppFrom != "" {
		resp, err := c.sendMessage(ctx, "whatsapp:"+c.whatsAppFrom, "whatsapp:"+normalized, body)
		if err == nil {
			c.logger.Info("whatsapp fallback sent", "to", normalized, "sid", resp.SID)
			return &FollowupMessage{MessageID: resp.SID, Channel: ChannelWhatsApp}, nil
		}
		if c.smsFrom == "" {
			return nil, fmt.Errorf("outreach: whatsapp send failed with no SMS fallback: %w", err)
		}
		fallbackReason = err.Error()
		c.logger.Warn("whatsapp fallback failed, trying sms", "to", normalized, "error", err)
	}

	if c.smsFrom == "" {
		return nil, ErrNoMessageSender
	}
	resp, err := c.sendMessage(ctx, c.smsFrom, normalized, body)
	if err != nil {
		return nil, fmt.Errorf("outreach: sms send failed: %w", err)
	}
	c.logger.Info("sms fallback sent", "to", normalized, "sid", resp.SID)
	return &FollowupMessage{MessageID: resp.SID, Channel: ChannelSMS, FallbackReason: fallbackReason}, nil
}

func (c *Client) sendMessage(ctx context.Context, from, to, body string) (*twilioResource, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	return c.postForm(ctx, endpoint, form)
}

type twilioResource struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (*twilioResource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("outreach: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("outreach: http error: %w", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(formatProviderError(resp.StatusCode, data))
	}
	var parsed twilioResource
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("outreach: decode response: %w", err)
	}
	return &parsed, nil
}

type providerAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func formatProviderError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("twilio status %d", status)
	}
	var parsed providerAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("twilio status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("twilio status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("twilio status %d: %s", status, trimmed)
}
