package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciia-mx/leadflow/internal/actionlog"
	"github.com/ciia-mx/leadflow/internal/directory"
	"github.com/ciia-mx/leadflow/internal/notify"
	"github.com/ciia-mx/leadflow/internal/observability/metrics"
	"github.com/ciia-mx/leadflow/internal/outreach"
	"github.com/ciia-mx/leadflow/pkg/logging"
)

// DirectoryService is the slice of the CRM directory the orchestrator needs.
type DirectoryService interface {
	FindOrCreateContact(ctx context.Context, name, email, phone, company string) (int64, error)
	CreateOpportunity(ctx context.Context, name string, contactID int64, company, service, source string) (*directory.Opportunity, error)
}

// WelcomeMailer sends the templated welcome message.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, toEmail, toName, service string) (*notify.WelcomeReceipt, error)
}

// OutreachService places the intro call and sends the fallback message.
type OutreachService interface {
	PlaceIntroCall(ctx context.Context, toNumber, leadName string) (*outreach.CallOutcome, error)
	SendFallbackMessage(ctx context.Context, toNumber, leadName string) (*outreach.FollowupMessage, error)
}

// ActionRecorder appends one entry per orchestration step to the audit trail.
type ActionRecorder interface {
	Append(channel actionlog.Channel, data map[string]any) error
}

// Orchestrator drives the lead workflow: directory upsert, welcome email,
// intro call, and conditional fallback message, logging every step. Steps are
// strictly ordered; a failure aborts the remainder but never rolls back side
// effects already performed.
type Orchestrator struct {
	directory DirectoryService
	mailer    WelcomeMailer
	outreach  OutreachService
	actions   ActionRecorder
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
}

// NewOrchestrator wires the orchestrator. All collaborators except metrics
// are required.
func NewOrchestrator(dir DirectoryService, mailer WelcomeMailer, out OutreachService, actions ActionRecorder, m *metrics.LeadMetrics, logger *logging.Logger) *Orchestrator {
	if dir == nil || mailer == nil || out == nil || actions == nil {
		panic("leads: orchestrator collaborators cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		directory: dir,
		mailer:    mailer,
		outreach:  out,
		actions:   actions,
		metrics:   m,
		logger:    logger,
	}
}

// HandleSubmission runs the full workflow for one submission and returns the
// created opportunity id. Validation failures perform no side effects; any
// later failure is recorded on the error channel before surfacing.
func (o *Orchestrator) HandleSubmission(ctx context.Context, sub Submission) (int64, error) {
	sub = sub.normalized()
	if err := sub.Validate(); err != nil {
		o.metrics.ObserveSubmission("validation_failed")
		return 0, err
	}

	leadID, err := o.run(ctx, sub)
	if err != nil {
		o.metrics.ObserveSubmission("error")
		o.logger.Error("lead workflow failed", "email", sub.Email, "error", err)
		if logErr := o.actions.Append(actionlog.ChannelError, map[string]any{
			"message": err.Error(),
		}); logErr != nil {
			o.logger.Error("failed to record workflow error", "error", logErr)
		}
		return 0, err
	}

	o.metrics.ObserveSubmission("accepted")
	return leadID, nil
}

func (o *Orchestrator) run(ctx context.Context, sub Submission) (int64, error) {
	contactID, err := o.directory.FindOrCreateContact(ctx, sub.Name, sub.Email, sub.Phone, sub.Company)
	if err != nil {
		return 0, fmt.Errorf("upsert contact: %w", err)
	}

	oppName := fmt.Sprintf("%s - %s", sub.Service, sub.Name)
	opp, err := o.directory.CreateOpportunity(ctx, oppName, contactID, sub.Company, sub.Service, sub.Source)
	if err != nil {
		return 0, fmt.Errorf("create opportunity: %w", err)
	}
	if err := o.actions.Append(actionlog.ChannelDirectory, map[string]any{
		"action":  "lead_created",
		"lead_id": opp.ID,
		"payload": sub.payload(),
	}); err != nil {
		return 0, err
	}

	receipt, err := o.mailer.SendWelcome(ctx, sub.Email, sub.Name, sub.Service)
	if err != nil {
		return 0, fmt.Errorf("send welcome email: %w", err)
	}
	if err := o.actions.Append(actionlog.ChannelNotification, map[string]any{
		"lead_id":  opp.ID,
		"provider": receipt.Provider,
	}); err != nil {
		return 0, err
	}

	outcome, err := o.outreach.PlaceIntroCall(ctx, sub.Phone, sub.Name)
	if err != nil {
		return 0, fmt.Errorf("place intro call: %w", err)
	}
	o.metrics.ObserveIntroCall(outcome.Status)
	if err := o.actions.Append(actionlog.ChannelOutreachCall, map[string]any{
		"lead_id": opp.ID,
		"status":  outcome.Status,
	}); err != nil {
		return 0, err
	}

	if !outreach.IsSuccessful(outcome) {
		msg, err := o.outreach.SendFallbackMessage(ctx, sub.Phone, sub.Name)
		if err != nil {
			return 0, fmt.Errorf("send fallback message: %w", err)
		}
		o.metrics.ObserveFallback(msg.Channel)
		if err := o.actions.Append(actionlog.ChannelOutreachMessage, map[string]any{
			"lead_id":    opp.ID,
			"message_id": msg.MessageID,
			"channel":    msg.Channel,
		}); err != nil {
			return 0, err
		}
	}

	return opp.ID, nil
}

// IsValidationError reports whether err came from submission validation.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
