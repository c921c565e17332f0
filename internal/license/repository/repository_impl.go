package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	licensedomain "github.com/keygatehq/keygate/internal/license/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() licensedomain.Repository {
	return &repo{}
}

const recordColumns = `id, license_key, payload, scope, hardware_id, days, issued_at, expires_at,
	 paid, used, revoked, paid_at, used_at, revoked_at, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rec *licensedomain.KeyRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO license_keys (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Key,
		rec.Payload,
		rec.Scope,
		rec.HardwareID,
		rec.Days,
		rec.IssuedAt,
		rec.ExpiresAt,
		rec.Paid,
		rec.Used,
		rec.Revoked,
		rec.PaidAt,
		rec.UsedAt,
		rec.RevokedAt,
		rec.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*licensedomain.KeyRecord, error) {
	var rec licensedomain.KeyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+recordColumns+` FROM license_keys WHERE id = ?`,
		id,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*licensedomain.KeyRecord, error) {
	var rec licensedomain.KeyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+recordColumns+` FROM license_keys WHERE license_key = ? LIMIT 1`,
		key,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]licensedomain.KeyRecord, error) {
	var recs []licensedomain.KeyRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+recordColumns+` FROM license_keys ORDER BY created_at DESC LIMIT ?`,
		limit,
	).Scan(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE license_keys SET paid = ?, paid_at = ? WHERE id = ? AND paid = ?`,
		true, at, id, false,
	).Error
}

func (r *repo) MarkUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE license_keys SET used = ?, used_at = ? WHERE id = ? AND used = ?`,
		true, at, id, false,
	).Error
}

func (r *repo) Revoke(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE license_keys SET revoked = ?, revoked_at = ? WHERE id = ? AND revoked = ?`,
		true, at, id, false,
	).Error
}
