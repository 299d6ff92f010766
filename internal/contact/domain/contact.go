package domain

import "time"

// Contact is one directory entry linking an account key to a recipient.
// Created and edited through the directory screens; the reconciliation core
// only reads it.
type Contact struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	AccountKey string    `json:"account_key" gorm:"uniqueIndex;not null"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
