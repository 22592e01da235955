package models

import (
	"time"

	"gorm.io/gorm"
)

// PostKind says which side of the marketplace a report belongs to.
// The legacy data model overloaded the status column with LOST/FOUND
// literals; kind and status are kept orthogonal here.
type PostKind string

const (
	KindLost  PostKind = "LOST"
	KindFound PostKind = "FOUND"
)

// PostStatus is the lifecycle state of a report.
type PostStatus string

const (
	StatusPending  PostStatus = "PENDING"
	StatusActive   PostStatus = "ACTIVE"
	StatusResolved PostStatus = "RESOLVED"
	StatusRejected PostStatus = "REJECTED"
)

// ItemType categorizes the reported item.
type ItemType string

const (
	ItemPhone    ItemType = "PHONE"
	ItemLaptop   ItemType = "LAPTOP"
	ItemPurse    ItemType = "PURSE"
	ItemWallet   ItemType = "WALLET"
	ItemIDCard   ItemType = "ID_CARD"
	ItemDocument ItemType = "DOCUMENT"
	ItemPet      ItemType = "PET"
	ItemBag      ItemType = "BAG"
	ItemOther    ItemType = "OTHER"
)

// ItemTypes lists every accepted item category.
var ItemTypes = []ItemType{
	ItemPhone, ItemLaptop, ItemPurse, ItemWallet, ItemIDCard,
	ItemDocument, ItemPet, ItemBag, ItemOther,
}

// Valid reports whether t is a known item category.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Post represents a lost- or found-item report.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Location    string     `gorm:"not null" json:"location"`
	Date        time.Time  `json:"date"`
	Time        string     `json:"time,omitempty"`
	ItemType    ItemType   `gorm:"not null;index" json:"type"`
	Kind        PostKind   `gorm:"not null;index" json:"kind"`
	Status      PostStatus `gorm:"not null;index;default:ACTIVE" json:"status"`

	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	UserName    string `json:"user_name,omitempty"`
	UserInitial string `json:"user_initial,omitempty"`

	Images []string `gorm:"serializer:json" json:"images"`

	IMEI         string `json:"imei,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	IDNumber     string `json:"id_number,omitempty"`
	Color        string `json:"color,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	Hidden bool `gorm:"default:false" json:"hidden"`

	// Cross-post tracking for the Facebook page integration.
	FacebookPostID      string     `json:"facebook_post_id,omitempty"`
	FacebookPublishedAt *time.Time `json:"facebook_published_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Claimable reports whether the post can receive a found-report:
// it must be a loss report that is still outstanding.
func (p *Post) Claimable() bool {
	return p.Kind == KindLost && p.Status == StatusActive
}
