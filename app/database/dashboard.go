package database

import (
	"fmt"
	"time"

	"kodi-rentals/app/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetDashboardStats returns statistics for the landlord dashboard
func GetDashboardStats(db *gorm.DB, userID string, now time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	monthStart := models.StartOfMonth(now).UTC()

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&stats.TotalProperties, &models.Property{}, "", nil},
		{&stats.TotalUnits, &models.Unit{}, "", nil},
		{&stats.OccupiedUnits, &models.Unit{}, "status = ?", []any{models.UnitOccupied}},
		{&stats.VacantUnits, &models.Unit{}, "status = ?", []any{models.UnitVacant}},
		{&stats.ActiveTenants, &models.Tenant{}, "status = ?", []any{models.TenantActive}},
		{&stats.PendingPayments, &models.Payment{}, "status = ?", []any{models.PaymentPending}},
	}
	for _, c := range counts {
		q := db.Model(c.model).Scopes(owned(userID))
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("dashboard counts: %w", err)
		}
	}
	if stats.TotalUnits > 0 {
		stats.OccupancyRate = float64(stats.OccupiedUnits) / float64(stats.TotalUnits) * 100
	}

	var err error
	stats.MonthlyRevenue, err = sumSince(db.Model(&models.Payment{}).Scopes(owned(userID)).
		Where("status IN ?", []models.PaymentStatus{models.PaymentPaid, models.PaymentPartial}), monthStart)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	stats.MonthlyExpenses, err = sumSince(db.Model(&models.Expense{}).Scopes(owned(userID)), monthStart)
	if err != nil {
		return nil, fmt.Errorf("monthly expenses: %w", err)
	}

	err = db.Model(&models.Tenant{}).Scopes(owned(userID)).
		Where("status = ?", models.TenantActive).
		Where("NOT EXISTS (?)", db.Model(&models.Payment{}).Select("1").
			Where("payments.tenant_id = tenants.id AND payments.status IN ? AND payments.date >= ?",
				[]models.PaymentStatus{models.PaymentPaid, models.PaymentPartial}, monthStart)).
		Count(&stats.UnpaidTenants).Error
	if err != nil {
		return nil, fmt.Errorf("unpaid tenants: %w", err)
	}

	recent, err := GetActivities(db, userID, 5)
	if err != nil {
		return nil, err
	}
	stats.RecentActivities = make([]models.ActivityLog, 0, len(recent))
	for _, a := range recent {
		stats.RecentActivities = append(stats.RecentActivities, *a)
	}
	return stats, nil
}

func sumSince(q *gorm.DB, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := q.Where("date >= ?", since).Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
