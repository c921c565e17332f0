package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultListLimit caps audit listings.
const DefaultListLimit = 200

// Actions recorded for administrator activity.
const (
	ActionKeyMinted  = "key.minted"
	ActionKeyPaid    = "key.paid"
	ActionKeyUsed    = "key.used"
	ActionKeyRevoked = "key.revoked"
)

type AuditLog struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType string            `json:"actor_type"`
	Action    string            `json:"action"`
	TargetID  *string           `json:"target_id,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	IPAddress *string           `json:"ip_address,omitempty"`
	UserAgent *string           `json:"user_agent,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Entry is one administrator action to record. Metadata string values are
// masked before they hit the store; never rely on the trail to recover a
// full key.
type Entry struct {
	ActorType string
	Action    string
	TargetID  string
	Metadata  map[string]any
	IPAddress string
	UserAgent string
}

type ListFilter struct {
	Action   string
	TargetID string
	Limit    int
}

type Service interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditLog, error)
}

var ErrInvalidAction = errors.New("invalid_action")
