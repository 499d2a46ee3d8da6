package whatsapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Notifier sends inventory alerts to the equipment custodian.
type Notifier struct {
	sender    Sender
	custodian string
	logger    *zap.Logger
}

// NewNotifier wires a notifier. A nil sender yields a disabled notifier.
func NewNotifier(cfg config.WhatsAppConfig, sender Sender, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{sender: sender, custodian: cfg.CustodianPhone, logger: logger}
}

// Enabled reports whether messages are actually delivered.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil && n.custodian != ""
}

// NotifyOverdue sends the overdue report to the custodian. Nothing is sent when
// items is empty or the notifier is disabled.
func (n *Notifier) NotifyOverdue(ctx context.Context, items []reporting.OverdueItem) error {
	if len(items) == 0 {
		return nil
	}
	if !n.Enabled() {
		if n != nil {
			n.logger.Debug("notifier disabled, overdue report not sent", zap.Int("overdue", len(items)))
		}
		return nil
	}

	id, err := n.sender.SendText(ctx, n.custodian, reporting.FormatOverdueReport(items))
	if err != nil {
		return fmt.Errorf("send overdue report: %w", err)
	}

	n.logger.Info("overdue report sent", zap.String("message_id", id), zap.Int("overdue", len(items)))
	return nil
}
