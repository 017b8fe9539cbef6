package events

import (
	"github.com/sirupsen/logrus"
)

// AuditObserver writes every item event to the log.
type AuditObserver struct {
	logger logrus.FieldLogger
}

func NewAuditObserver(logger logrus.FieldLogger) *AuditObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuditObserver{logger: logger}
}

func (a *AuditObserver) Name() string {
	return "audit_observer"
}

func (a *AuditObserver) Update(event ItemEvent) error {
	fields := logrus.Fields{
		"event":   event.Type,
		"item_id": event.ItemID,
	}
	if event.Reaction != "" {
		fields["reaction"] = event.Reaction
	}
	if event.Item != nil {
		fields["type"] = event.Item.Type
		fields["tags"] = []string(event.Item.Tags)
	}
	a.logger.WithFields(fields).Info("item event")
	return nil
}
