package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
	"github.com/ManuelReschke/StoreFox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/StoreFox/internal/pkg/suspension"
)

// MailEnqueuer hands a rendered message to the delivery queue.
type MailEnqueuer interface {
	EnqueueMail(ctx context.Context, msg jobqueue.MailJobPayload) (*jobqueue.Job, error)
}

// QueueNotifier renders customer mails and queues them for delivery. The
// customer id is the account email address.
type QueueNotifier struct {
	queue     MailEnqueuer
	locale    string
	storeName string
}

// NewQueueNotifier creates a notifier. locale is an Accept-Language value used
// for dates in the mail body.
func NewQueueNotifier(queue MailEnqueuer, locale, storeName string) *QueueNotifier {
	if storeName == "" {
		storeName = "StoreFox"
	}
	return &QueueNotifier{queue: queue, locale: locale, storeName: storeName}
}

// NewQueueNotifierFromEnv reads MAIL_LOCALE and APP_NAME.
func NewQueueNotifierFromEnv(queue MailEnqueuer) *QueueNotifier {
	return NewQueueNotifier(queue, env.GetEnv("MAIL_LOCALE", "en"), env.GetEnv("APP_NAME", "StoreFox"))
}

func (n *QueueNotifier) AccountSuspended(ctx context.Context, customerID string, until time.Time, unpaidCount int) error {
	body := fmt.Sprintf(
		"Hello,\n\nyour %s account has been suspended until %s because %d orders were left unpaid within %d days.\n"+
			"You can place new orders again after that date.\n",
		n.storeName,
		suspension.FormatSuspendedUntil(until, n.locale),
		unpaidCount,
		int(suspension.TrackingPeriod/(24*time.Hour)),
	)
	return n.enqueue(ctx, jobqueue.MailJobPayload{
		To:      customerID,
		Subject: fmt.Sprintf("Your %s account has been suspended", n.storeName),
		Body:    body,
		Kind:    jobqueue.MailKindAccountSuspended,
	})
}

func (n *QueueNotifier) AccountReactivated(ctx context.Context, customerID string) error {
	return n.enqueue(ctx, jobqueue.MailJobPayload{
		To:      customerID,
		Subject: fmt.Sprintf("Your %s account is active again", n.storeName),
		Body:    fmt.Sprintf("Hello,\n\nyour %s account is active again. Thank you for your patience.\n", n.storeName),
		Kind:    jobqueue.MailKindAccountReactivated,
	})
}

// PaymentConfirmed tells the buyer that an order has been paid.
func (n *QueueNotifier) PaymentConfirmed(ctx context.Context, email, reference string, amount int64, currency string) error {
	return n.enqueue(ctx, jobqueue.MailJobPayload{
		To:      email,
		Subject: fmt.Sprintf("Payment received for order %s", reference),
		Body: fmt.Sprintf("Hello,\n\nwe received your payment of %s for order %s.\n",
			FormatAmount(amount, currency), reference),
		Kind: jobqueue.MailKindPaymentConfirmed,
	})
}

func (n *QueueNotifier) enqueue(ctx context.Context, msg jobqueue.MailJobPayload) error {
	job, err := n.queue.EnqueueMail(ctx, msg)
	if err != nil {
		return fmt.Errorf("enqueue %s mail: %w", msg.Kind, err)
	}
	log.Debugf("[Notification] Queued %s mail for %s as job %s", msg.Kind, msg.To, job.ID)
	return nil
}

// FormatAmount renders minor units as "12.50 EUR".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, currency)
}
