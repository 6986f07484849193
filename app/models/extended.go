package models

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalProperties  int64           `json:"totalProperties"`
	TotalUnits       int64           `json:"totalUnits"`
	OccupiedUnits    int64           `json:"occupiedUnits"`
	VacantUnits      int64           `json:"vacantUnits"`
	OccupancyRate    float64         `json:"occupancyRate"`
	ActiveTenants    int64           `json:"activeTenants"`
	MonthlyRevenue   decimal.Decimal `json:"monthlyRevenue"`
	MonthlyExpenses  decimal.Decimal `json:"monthlyExpenses"`
	PendingPayments  int64           `json:"pendingPayments"`
	UnpaidTenants    int64           `json:"unpaidTenants"`
	RecentActivities []ActivityLog   `json:"recentActivities"`
}
