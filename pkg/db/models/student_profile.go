package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentProfile holds the checkout-gating details for a customer account.
// Checkout is permitted once a row exists; no further validation applies.
type StudentProfile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StudentName string    `gorm:"column:student_name;not null"`
	Class       string    `gorm:"column:class;not null"`
	Section     string    `gorm:"column:section;not null"`
	StudentCode string    `gorm:"column:student_code;not null"`
	ParentName  string    `gorm:"column:parent_name;not null"`
	ParentEmail string    `gorm:"column:parent_email;not null"`
	ParentPhone string    `gorm:"column:parent_phone;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
