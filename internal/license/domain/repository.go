package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the keyed record store boundary. Implementations return
// (nil, nil) when no record matches; connectivity faults come back as
// plain errors for the service to classify.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rec *KeyRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*KeyRecord, error)
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*KeyRecord, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]KeyRecord, error)

	// Flag transitions are one-way; none of these ever writes false.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error
	MarkUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error
	Revoke(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error
}
