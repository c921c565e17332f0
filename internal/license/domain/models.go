package domain

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// KeyRecord is the persisted state of one minted key. The key string is
// unique across all records; flags only ever transition false to true and
// records are never deleted by the service.
type KeyRecord struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	// Column named license_key because KEY is reserved in MySQL.
	Key        string         `gorm:"column:license_key;type:text;not null;uniqueIndex:ux_license_keys_key" json:"key"`
	Payload    datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	Scope      Scope          `gorm:"column:scope;type:text;not null" json:"scope"`
	HardwareID string         `gorm:"column:hardware_id;type:text;not null" json:"hardware_id"`
	Days       int            `gorm:"column:days;not null" json:"days"`
	IssuedAt   int64          `gorm:"column:issued_at;not null" json:"issued_at"`
	ExpiresAt  int64          `gorm:"column:expires_at;not null" json:"expires_at"`
	Paid       bool           `gorm:"column:paid;not null;default:false" json:"paid"`
	Used       bool           `gorm:"column:used;not null;default:false" json:"used"`
	Revoked    bool           `gorm:"column:revoked;not null;default:false" json:"revoked"`
	PaidAt     *int64         `gorm:"column:paid_at" json:"paid_at,omitempty"`
	UsedAt     *int64         `gorm:"column:used_at" json:"used_at,omitempty"`
	RevokedAt  *int64         `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt  int64          `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

// TableName sets the database table name.
func (KeyRecord) TableName() string { return "license_keys" }
