package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property is a building or estate owned by a user account.
type Property struct {
	Base
	UserID      string       `json:"userId" gorm:"not null;index;size:36"`
	Name        string       `json:"name" gorm:"not null"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	Type        PropertyType `json:"type" gorm:"not null;size:20;default:apartment"`
	Description string       `json:"description,omitempty" gorm:"type:text"`

	UnitCount int64 `json:"unitCount" gorm:"-"`
}

// Unit is a lettable space inside a property.
type Unit struct {
	Base
	UserID        string          `json:"userId" gorm:"not null;index;size:36"`
	PropertyID    string          `json:"propertyId" gorm:"not null;uniqueIndex:idx_units_property_number;size:36"`
	UnitNumber    string          `json:"unitNumber" gorm:"not null;uniqueIndex:idx_units_property_number"`
	RentAmount    decimal.Decimal `json:"rentAmount" gorm:"type:decimal(12,2);not null;default:0"`
	DepositAmount decimal.Decimal `json:"depositAmount" gorm:"type:decimal(12,2);not null;default:0"`
	Bedrooms      int             `json:"bedrooms"`
	Status        UnitStatus      `json:"status" gorm:"not null;size:20;default:vacant;index"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID;references:ID"`
}

// Tenant is a lessee bound to at most one unit at a time.
type Tenant struct {
	Base
	UserID       string          `json:"userId" gorm:"not null;index;size:36"`
	FirstName    string          `json:"firstName" gorm:"not null"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone" gorm:"size:20"`
	NationalID   string          `json:"nationalId,omitempty" gorm:"size:30"`
	UnitID       *string         `json:"unitId,omitempty" gorm:"index;size:36"`
	LeaseStart   *time.Time      `json:"leaseStart,omitempty"`
	LeaseEnd     *time.Time      `json:"leaseEnd,omitempty"`
	RentAmount   decimal.Decimal `json:"rentAmount" gorm:"type:decimal(12,2);not null;default:0"`
	DepositPaid  decimal.Decimal `json:"depositPaid" gorm:"type:decimal(12,2);not null;default:0"`
	Status       TenantStatus    `json:"status" gorm:"not null;size:10;default:active;index"`

	Unit *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID;references:ID"`
}

func (t *Tenant) FullName() string {
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantActive
}
