package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/member-auth/internal/events"
)

// AuditService writes auth events to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventMemberRegistered, a.record)
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.record)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventLoginThrottled, a.handleLoginThrottled)
	a.dispatcher.Subscribe(events.EventMemberLoggedOut, a.record)
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("login_name", event.LoginName),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	reason := "unknown"
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		reason = payload.Reason
	}
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("login_name", event.LoginName),
		zap.String("reason", reason),
		zap.Time("at", event.Timestamp),
	)
	return nil
}

func (a *AuditService) handleLoginThrottled(_ context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("login_name", event.LoginName),
		zap.Time("at", event.Timestamp),
	)
	return nil
}
