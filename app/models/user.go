package models

import "time"

type User struct {
	Base
	Email      string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password   string   `json:"-" gorm:"not null"`
	FirstName  string   `json:"firstName" gorm:"not null"`
	LastName   string   `json:"lastName" gorm:"not null"`
	Phone      string   `json:"phone,omitempty" gorm:"size:20"`
	Role       UserRole `json:"role" gorm:"not null;size:20;default:manager"`
	IsVerified bool     `json:"isVerified" gorm:"default:false"`
	IsActive   bool     `json:"isActive" gorm:"default:true"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// VerificationCode is a hashed one-time password sent during signup.
type VerificationCode struct {
	Base
	UserID     string    `json:"userId" gorm:"not null;index;size:36"`
	CodeHash   string    `json:"-" gorm:"not null"`
	Purpose    string    `json:"purpose" gorm:"not null;size:20"`
	ExpiresAt  time.Time `json:"expiresAt" gorm:"not null"`
	Attempts   int       `json:"attempts" gorm:"not null;default:0"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}
