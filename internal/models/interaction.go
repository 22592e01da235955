package models

import "time"

// ClaimStatus is the lifecycle state of a found-interaction.
// There is intentionally no REJECTED state: an owner cannot decline a
// claim yet, and the transition table is PENDING -> ACCEPTED only.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimAccepted ClaimStatus = "ACCEPTED"
)

// FoundInteraction records one person reporting that they found the
// item referenced by a post. A post may accumulate several of these;
// confirming one resolves the post.
type FoundInteraction struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	PostID        uint        `gorm:"not null;index" json:"post_id"`
	Post          Post        `gorm:"foreignKey:PostID" json:"-"`
	FinderName    string      `gorm:"not null" json:"finder_name"`
	FinderContact string      `gorm:"not null;index" json:"finder_contact"`
	FinderPhone   string      `json:"finder_phone,omitempty"`
	Message       string      `json:"message,omitempty"`
	Status        ClaimStatus `gorm:"not null;index;default:PENDING" json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// ClaimSummary is the owner-facing view of a pending claim.
type ClaimSummary struct {
	ID          uint        `json:"id"`
	PostID      uint        `json:"post_id"`
	PostTitle   string      `json:"post_title"`
	FinderName  string      `json:"finder_name"`
	FinderEmail string      `json:"finder_email"`
	FinderPhone string      `json:"finder_phone"`
	Status      ClaimStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}
