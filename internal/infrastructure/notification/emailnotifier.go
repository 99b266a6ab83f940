package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"mentora/internal/shared/config"
	"mentora/internal/shared/logger"
)

// EmailNotifier sends operator alerts over SMTP. Every send is best-effort:
// failures are logged and swallowed, because no notification is ever worth
// failing a billing or renewal flow over.
type EmailNotifier struct {
	cfg    *config.NotificationConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

// NewEmailNotifier creates the SMTP-backed operator notifier
func NewEmailNotifier(cfg *config.NotificationConfig, logger logger.Interface) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// NotifySweepCompleted reports the outcome of a renewal sweep run
func (n *EmailNotifier) NotifySweepCompleted(ctx context.Context, renewed, failed int) {
	subject := fmt.Sprintf("Renewal sweep completed: %d renewed, %d failed", renewed, failed)
	body := fmt.Sprintf(
		"The assignment renewal sweep finished.\n\nRenewed: %d\nFailed or expired: %d\n",
		renewed, failed)
	n.send(subject, body)
}

// NotifyBillingFailure reports a failed recurring charge
func (n *EmailNotifier) NotifyBillingFailure(ctx context.Context, advisorID uint, gateway, ref, reason string) {
	subject := fmt.Sprintf("Billing failure for advisor %d", advisorID)
	body := fmt.Sprintf(
		"A recurring credit charge failed.\n\nAdvisor: %d\nGateway: %s\nSubscription: %s\nReason: %s\n",
		advisorID, gateway, ref, reason)
	n.send(subject, body)
}

// NotifyInconsistency flags state that needs manual reconciliation
func (n *EmailNotifier) NotifyInconsistency(ctx context.Context, subject, detail string) {
	n.send("Inconsistency detected: "+subject, detail)
}

func (n *EmailNotifier) send(subject, body string) {
	if !n.cfg.Enabled || n.cfg.OperatorTo == "" {
		n.logger.Debugw("operator notification suppressed", "subject", subject)
		return
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.FromAddress, n.cfg.FromName)
	m.SetHeader("To", n.cfg.OperatorTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		n.logger.Errorw("failed to send operator notification",
			"subject", subject, "to", n.cfg.OperatorTo, "error", err)
		return
	}

	n.logger.Debugw("operator notification sent", "subject", subject)
}
