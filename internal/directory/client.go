// Package directory wraps the Kommo CRM REST API. The directory is the system
// of record for contacts and opportunities; nothing is cached locally.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ciia-mx/leadflow/pkg/logging"
)

var (
	// ErrNoContactID is returned when the provider accepts a contact create
	// but returns no identifier.
	ErrNoContactID = errors.New("directory: provider returned no contact id")
	// ErrNoOpportunityID is returned when the provider accepts an opportunity
	// create but returns no identifier.
	ErrNoOpportunityID = errors.New("directory: provider returned no opportunity id")
	// ErrNoScheduledStatus is returned when a status update is requested with
	// no explicit status and no configured scheduled token.
	ErrNoScheduledStatus = errors.New("directory: scheduled status token not configured")
)

// Config controls how the directory client behaves.
type Config struct {
	BaseURL     string
	AccessToken string

	// Pipeline and status identifiers are provider-defined opaque tokens.
	PipelineID      string
	StatusInitial   string
	StatusScheduled string

	// Optional custom field mappings. An opportunity attribute is attached
	// only when both a value and its mapping are configured.
	FieldCompany string
	FieldService string
	FieldSource  string

	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client calls the Kommo v4 endpoints the orchestrator needs.
type Client struct {
	baseURL         string
	accessToken     string
	pipelineID      string
	statusInitial   string
	statusScheduled string
	fieldCompany    string
	fieldService    string
	fieldSource     string
	httpClient      *http.Client
	logger          *logging.Logger
}

// New creates a configured Client. Base URL and access token are required.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("directory: base URL is required")
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("directory: access token is required")
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
		baseURL:         baseURL,
		accessToken:     cfg.AccessToken,
		pipelineID:      cfg.PipelineID,
		statusInitial:   cfg.StatusInitial,
		statusScheduled: cfg.StatusScheduled,
		fieldCompany:    cfg.FieldCompany,
		fieldService:    cfg.FieldService,
		fieldSource:     cfg.FieldSource,
		httpClient:      httpClient,
		logger:          logger,
	}, nil
}

// FindContactByEmail looks up an existing contact. The second return value is
// false when no contact matches.
func (c *Client) FindContactByEmail(ctx context.Context, email string) (int64, bool, error) {
	if strings.TrimSpace(email) == "" {
		return 0, false, nil
	}
	q := url.Values{}
	q.Set("query", email)
	data, err := c.invoke(ctx, http.MethodGet, "/api/v4/contacts", q, nil)
	if err != nil {
		return 0, false, err
	}
	var parsed contactListResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return 0, false, fmt.Errorf("directory: decode contact search: %w", err)
		}
	}
	if len(parsed.Embedded.Contacts) == 0 {
		return 0, false, nil
	}
	return parsed.Embedded.Contacts[0].ID, true, nil
}

// CreateContact registers a new contact and returns its identifier.
func (c *Client) CreateContact(ctx context.Context, name, email, phone, company string) (int64, error) {
	contact := contactPayload{
		Name: name,
		CustomFields: []contactField{
			{FieldCode: "EMAIL", Values: []fieldValue{{EnumCode: "WORK", Value: email}}},
			{FieldCode: "PHONE", Values: []fieldValue{{EnumCode: "WORK", Value: phone}}},
		},
	}
	if company != "" {
		contact.CompanyName = company
	}

	body, err := json.Marshal(addRequest[contactPayload]{Add: []contactPayload{contact}})
	if err != nil {
		return 0, fmt.Errorf("directory: marshal contact: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/api/v4/contacts", nil, body)
	if err != nil {
		return 0, err
	}
	var parsed contactListResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return 0, fmt.Errorf("directory: decode contact create: %w", err)
		}
	}
	if len(parsed.Embedded.Contacts) == 0 || parsed.Embedded.Contacts[0].ID == 0 {
		return 0, ErrNoContactID
	}
	return parsed.Embedded.Contacts[0].ID, nil
}

// FindOrCreateContact prefers an existing contact matched by email, so
// repeated submissions with the same email never create duplicates.
func (c *Client) FindOrCreateContact(ctx context.Context, name, email, phone, company string) (int64, error) {
	id, found, err := c.FindContactByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	return c.CreateContact(ctx, name, email, phone, company)
}

// Opportunity is a created CRM lead record.
type Opportunity struct {
	ID   int64
	Name string
}

// CreateOpportunity creates an opportunity owned by contactID. Custom
// attributes are attached only when both a value and a field mapping exist.
func (c *Client) CreateOpportunity(ctx context.Context, name string, contactID int64, company, service, source string) (*Opportunity, error) {
	var customFields []customField
	for _, m := range []struct {
		fieldID string
		value   string
	}{
		{c.fieldCompany, company},
		{c.fieldService, service},
		{c.fieldSource, source},
	} {
		if m.fieldID == "" || m.value == "" {
			continue
		}
		id, err := strconv.ParseInt(m.fieldID, 10, 64)
		if err != nil {
			c.logger.Warn("skipping non-numeric custom field mapping", "field_id", m.fieldID)
			continue
		}
		customFields = append(customFields, customField{
			FieldID: id,
			Values:  []fieldValue{{Value: m.value}},
		})
	}

	lead := opportunityPayload{
		Name:         name,
		PipelineID:   jsonToken(c.pipelineID),
		StatusID:     jsonToken(c.statusInitial),
		CustomFields: customFields,
		Embedded: &opportunityEmbedded{
			Contacts: []contactRef{{ID: contactID}},
		},
	}
	body, err := json.Marshal(addRequest[opportunityPayload]{Add: []opportunityPayload{lead}})
	if err != nil {
		return nil, fmt.Errorf("directory: marshal opportunity: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/api/v4/leads", nil, body)
	if err != nil {
		return nil, err
	}
	var parsed opportunityListResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("directory: decode opportunity create: %w", err)
		}
	}
	if len(parsed.Embedded.Leads) == 0 || parsed.Embedded.Leads[0].ID == 0 {
		return nil, ErrNoOpportunityID
	}
	created := parsed.Embedded.Leads[0]
	return &Opportunity{ID: created.ID, Name: name}, nil
}

// UpdateOpportunityStatus moves an opportunity to statusID, defaulting to the
// configured scheduled token when statusID is empty.
func (c *Client) UpdateOpportunityStatus(ctx context.Context, opportunityID, statusID string) error {
	status := statusID
	if status == "" {
		status = c.statusScheduled
	}
	if status == "" {
		return ErrNoScheduledStatus
	}
	update := statusUpdatePayload{
		ID:       jsonToken(opportunityID),
		StatusID: jsonToken(status),
	}
	body, err := json.Marshal(updateRequest{Update: []statusUpdatePayload{update}})
	if err != nil {
		return fmt.Errorf("directory: marshal status update: %w", err)
	}
	_, err = c.invoke(ctx, http.MethodPatch, "/api/v4/leads", nil, body)
	return err
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("directory: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// APIError carries a non-success provider response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("directory: kommo responded %d: %s", e.StatusCode, e.Body)
}

// jsonToken renders an opaque provider token as a JSON number when numeric,
// otherwise as a string, and omits it entirely when empty.
type jsonToken string

func (t jsonToken) MarshalJSON() ([]byte, error) {
	s := string(t)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(s)
}
