package models

import (
	"fmt"
	"strings"
)

// UserRole defines the access level of an account.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
)

// PropertyType defines the kind of property being let.
type PropertyType string

const (
	PropertyApartment  PropertyType = "apartment"
	PropertyHouse      PropertyType = "house"
	PropertyCommercial PropertyType = "commercial"
	PropertyOther      PropertyType = "other"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyApartment, PropertyHouse, PropertyCommercial, PropertyOther:
		return true
	}
	return false
}

// UnitStatus defines the occupancy state of a unit.
type UnitStatus string

const (
	UnitVacant      UnitStatus = "vacant"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

func (s UnitStatus) Valid() bool {
	return s == UnitVacant || s == UnitOccupied || s == UnitMaintenance
}

// TenantStatus defines whether a tenancy is current.
type TenantStatus string

const (
	TenantActive TenantStatus = "active"
	TenantPast   TenantStatus = "past"
)

func (s TenantStatus) Valid() bool {
	return s == TenantActive || s == TenantPast
}

// PaymentStatus defines the status of a payment
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentFailed  PaymentStatus = "failed"
)

// ParsePaymentStatus maps any casing or legacy spelling onto a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return PaymentPending, nil
	case "paid", "completed", "complete", "success", "successful":
		return PaymentPaid, nil
	case "partial":
		return PaymentPartial, nil
	case "overdue":
		return PaymentOverdue, nil
	case "failed", "failure", "cancelled", "canceled":
		return PaymentFailed, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// PaymentMethod defines how a payment was made.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodBank        PaymentMethod = "bank"
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodLipaNaMpesa PaymentMethod = "lipa_na_mpesa"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodMobileMoney, MethodLipaNaMpesa:
		return true
	}
	return false
}

// PaymentType describes which charges a payment covers.
type PaymentType string

const (
	PaymentTypeRent     PaymentType = "Rent"
	PaymentTypeDeposit  PaymentType = "Deposit"
	PaymentTypeCombined PaymentType = "Combined"
)

// ReminderType defines what a reminder is about.
type ReminderType string

const (
	ReminderRentDue     ReminderType = "rent_due"
	ReminderOverdue     ReminderType = "overdue"
	ReminderMaintenance ReminderType = "maintenance"
	ReminderInspection  ReminderType = "inspection"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderRentDue, ReminderOverdue, ReminderMaintenance, ReminderInspection:
		return true
	}
	return false
}

// TargetsUnpaid reports whether only tenants without a payment this month
// should receive the reminder.
func (t ReminderType) TargetsUnpaid() bool {
	return t == ReminderRentDue || t == ReminderOverdue
}

// NotificationMethod defines the delivery channel.
type NotificationMethod string

const (
	NotifyEmail NotificationMethod = "email"
	NotifySMS   NotificationMethod = "sms"
)

func (m NotificationMethod) Valid() bool {
	return m == NotifyEmail || m == NotifySMS
}

// ReminderFrequency is informational; reminders fire once and are never re-armed.
type ReminderFrequency string

const (
	FrequencyOnce    ReminderFrequency = "once"
	FrequencyDaily   ReminderFrequency = "daily"
	FrequencyWeekly  ReminderFrequency = "weekly"
	FrequencyMonthly ReminderFrequency = "monthly"
)

func (f ReminderFrequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// ReminderStatus moves one way: pending -> sent.
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
)

// ActivityAction classifies activity log entries.
type ActivityAction string

const (
	ActionCreate   ActivityAction = "create"
	ActionUpdate   ActivityAction = "update"
	ActionDelete   ActivityAction = "delete"
	ActionPayment  ActivityAction = "payment"
	ActionReminder ActivityAction = "reminder"
	ActionLogin    ActivityAction = "login"
)
