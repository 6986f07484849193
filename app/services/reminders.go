package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/services/mailer"
	"kodi-rentals/app/services/sms"

	"gorm.io/gorm"
)

// EmailSender delivers templated email.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) (mailer.Delivery, error)
}

// SMSSender delivers text messages.
type SMSSender interface {
	Send(ctx context.Context, phone, text string) (sms.Delivery, error)
}

// ReminderDispatcher fans a reminder out to the owner's tenants.
type ReminderDispatcher struct {
	db     *gorm.DB
	email  EmailSender
	sms    SMSSender
	logger *slog.Logger
	now    func() time.Time
}

func NewReminderDispatcher(db *gorm.DB, email EmailSender, sms SMSSender, logger *slog.Logger) *ReminderDispatcher {
	return &ReminderDispatcher{db: db, email: email, sms: sms, logger: logger, now: time.Now}
}

// Recipients returns the tenants a reminder targets. Rent reminders skip
// tenants who already paid (fully or partly) this month.
func (d *ReminderDispatcher) Recipients(ctx context.Context, r *models.Reminder) ([]*models.Tenant, error) {
	db := d.db.WithContext(ctx)
	tenants, err := database.GetActiveTenants(db, r.UserID)
	if err != nil {
		return nil, err
	}
	if !r.Type.TargetsUnpaid() {
		return tenants, nil
	}

	monthStart := models.StartOfMonth(d.now())
	unpaid := make([]*models.Tenant, 0, len(tenants))
	for _, t := range tenants {
		paid, err := database.HasQualifyingPaymentSince(db, t.ID, monthStart)
		if err != nil {
			return nil, err
		}
		if !paid {
			unpaid = append(unpaid, t)
		}
	}
	return unpaid, nil
}

// Dispatch sends r to every targeted tenant and reports how many were
// attempted and how many failed. Individual failures never stop the fan-out.
func (d *ReminderDispatcher) Dispatch(ctx context.Context, r *models.Reminder) (recipients, failures int, err error) {
	tenants, err := d.Recipients(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve reminder recipients: %w", err)
	}

	for _, t := range tenants {
		recipients++
		if err := d.notify(ctx, r, t); err != nil {
			failures++
			d.logger.Warn("reminder delivery failed",
				"reminder_id", r.ID, "tenant_id", t.ID, "method", r.Method, "error", err)
		}
	}
	return recipients, failures, nil
}

func (d *ReminderDispatcher) notify(ctx context.Context, r *models.Reminder, t *models.Tenant) error {
	switch r.Method {
	case models.NotifyEmail:
		if strings.TrimSpace(t.Email) == "" {
			return fmt.Errorf("tenant has no email address")
		}
		_, err := d.email.Send(ctx, mailer.Message{
			To:       t.Email,
			Subject:  r.Title,
			Template: "reminder",
			Data: map[string]any{
				"TenantName": t.FullName(),
				"Title":      r.Title,
				"Message":    r.Message,
			},
		})
		return err
	case models.NotifySMS:
		if strings.TrimSpace(t.Phone) == "" {
			return fmt.Errorf("tenant has no phone number")
		}
		_, err := d.sms.Send(ctx, t.Phone, smsText(t, r))
		return err
	}
	return fmt.Errorf("unknown notification method %q", r.Method)
}

func smsText(t *models.Tenant, r *models.Reminder) string {
	text := fmt.Sprintf("Dear %s, %s", t.FirstName, r.Title)
	if r.Message != "" {
		text += ": " + r.Message
	}
	return text
}
