package models

import "time"

// SupportStatus tracks the handling state of a support message.
type SupportStatus string

const (
	SupportNew     SupportStatus = "new"
	SupportReplied SupportStatus = "replied"
	SupportClosed  SupportStatus = "closed"
)

// SupportMessage is a message submitted through the customer support form.
type SupportMessage struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	Email     string        `gorm:"not null;index" json:"email"`
	Subject   string        `gorm:"not null" json:"subject"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    SupportStatus `gorm:"not null;default:new" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
