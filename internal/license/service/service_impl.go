package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/keygatehq/keygate/internal/clock"
	"github.com/keygatehq/keygate/internal/config"
	licensedomain "github.com/keygatehq/keygate/internal/license/domain"
	obsmetrics "github.com/keygatehq/keygate/internal/observability/metrics"
	"github.com/keygatehq/keygate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    licensedomain.Repository
	Clock   clock.Clock
	Cfg     config.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    licensedomain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	signer  *licensedomain.Signer
	allowed []int
	metrics *obsmetrics.Metrics
}

func New(p Params) licensedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("license.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		clock:   p.Clock,
		signer:  licensedomain.NewSigner(p.Cfg.SignSecret),
		allowed: p.Cfg.AllowedDays,
		metrics: p.Metrics,
	}
}

func (s *Service) Mint(ctx context.Context, req licensedomain.MintRequest) (*licensedomain.MintResult, error) {
	scope := licensedomain.Scope(strings.TrimSpace(req.Scope))
	if scope != licensedomain.ScopeSingle && scope != licensedomain.ScopeGlobal {
		return nil, licensedomain.ErrInvalidScope
	}
	if req.Days <= 0 || !s.daysAllowed(req.Days) {
		return nil, licensedomain.ErrInvalidDays
	}

	hardwareID := strings.TrimSpace(req.HardwareID)
	if hardwareID == "" || scope == licensedomain.ScopeGlobal {
		hardwareID = licensedomain.HardwareWildcard
	}

	now := s.clock.Now().UnixMilli()
	payload := licensedomain.Payload{
		Scope:      scope,
		Days:       req.Days,
		HardwareID: hardwareID,
		IssuedAt:   now,
	}

	key, err := s.signer.MintKey(payload)
	if err != nil {
		return nil, err
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	rec := &licensedomain.KeyRecord{
		ID:         s.genID.Generate(),
		Key:        key,
		Payload:    rawPayload,
		Scope:      payload.Scope,
		HardwareID: payload.HardwareID,
		Days:       payload.Days,
		IssuedAt:   payload.IssuedAt,
		// Expiry is fixed here, once; verification never recomputes it.
		ExpiresAt: payload.IssuedAt + int64(payload.Days)*licensedomain.MillisPerDay,
		CreatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, rec); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Identical payload minted in the same millisecond.
			s.log.Warn("duplicate key collision", zap.String("scope", string(scope)))
		}
		s.log.Error("mint insert failed", zap.Error(err))
		return nil, storeErr(err)
	}

	s.metrics.RecordMint(ctx, string(payload.Scope))
	s.log.Info("key minted",
		zap.String("id", rec.ID.String()),
		zap.String("scope", string(payload.Scope)),
		zap.Int("days", payload.Days),
	)

	return &licensedomain.MintResult{
		ID:      rec.ID.String(),
		Key:     key,
		Payload: payload,
	}, nil
}

// Verify applies the decision procedure in its load-bearing order: the
// signature authenticates the payload before it is trusted, and revocation
// beats every other record state.
func (s *Service) Verify(ctx context.Context, key, hardwareID string) (*licensedomain.Verdict, error) {
	if key == "" {
		return s.reject(ctx, licensedomain.ReasonNoKey), nil
	}

	encoded, signature, err := licensedomain.SplitKey(key)
	if err != nil {
		return s.reject(ctx, licensedomain.ReasonBadFormat), nil
	}

	if !s.signer.Matches(encoded, signature) {
		return s.reject(ctx, licensedomain.ReasonBadSignature), nil
	}

	payload, err := licensedomain.DecodePayload(encoded)
	if err != nil {
		return s.reject(ctx, licensedomain.ReasonBadPayload), nil
	}

	rec, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		s.log.Error("verify lookup failed", zap.Error(err))
		return nil, storeErr(err)
	}
	if rec == nil {
		return s.reject(ctx, licensedomain.ReasonNotFound), nil
	}

	if rec.Revoked {
		return s.reject(ctx, licensedomain.ReasonRevoked), nil
	}
	if !rec.Paid {
		return s.reject(ctx, licensedomain.ReasonUnpaid), nil
	}

	now := s.clock.Now().UnixMilli()
	if now > rec.ExpiresAt {
		return s.reject(ctx, licensedomain.ReasonExpired), nil
	}

	// Legacy permissiveness: the binding check only fires when a hardware
	// identity was actually presented.
	if payload.Bound() && hardwareID != "" && hardwareID != payload.HardwareID {
		return s.reject(ctx, licensedomain.ReasonHWIDMismatch), nil
	}

	daysLeft := int((rec.ExpiresAt - now + licensedomain.MillisPerDay - 1) / licensedomain.MillisPerDay)
	s.metrics.RecordVerify(ctx, string(licensedomain.ReasonOK))

	return &licensedomain.Verdict{
		Valid:    true,
		Reason:   licensedomain.ReasonOK,
		DaysLeft: &daysLeft,
		RecordID: rec.ID.String(),
		Payload:  payload,
		Record:   rec,
	}, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return s.transition(ctx, id, "paid",
		func(rec *licensedomain.KeyRecord) bool { return rec.Paid },
		s.repo.MarkPaid,
	)
}

func (s *Service) MarkUsed(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return s.transition(ctx, id, "used",
		func(rec *licensedomain.KeyRecord) bool { return rec.Used },
		s.repo.MarkUsed,
	)
}

func (s *Service) Revoke(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return s.transition(ctx, id, "revoked",
		func(rec *licensedomain.KeyRecord) bool { return rec.Revoked },
		s.repo.Revoke,
	)
}

func (s *Service) Get(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	recID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return nil, storeErr(err)
	}
	if rec == nil {
		return nil, licensedomain.ErrNotFound
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]licensedomain.KeyRecord, error) {
	if limit <= 0 || limit > licensedomain.DefaultListLimit {
		limit = licensedomain.DefaultListLimit
	}
	recs, err := s.repo.List(ctx, s.db, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return recs, nil
}

type applyFn func(ctx context.Context, db *gorm.DB, id snowflake.ID, at int64) error

// transition applies a monotonic flag update. Re-marking a set flag is a
// no-op success; nothing ever clears a flag.
func (s *Service) transition(ctx context.Context, id, operation string, isSet func(*licensedomain.KeyRecord) bool, apply applyFn) (*licensedomain.KeyRecord, error) {
	recID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return nil, storeErr(err)
	}
	if rec == nil {
		return nil, licensedomain.ErrNotFound
	}
	if isSet(rec) {
		return rec, nil
	}

	if err := apply(ctx, s.db, recID, s.clock.Now().UnixMilli()); err != nil {
		s.log.Error("flag update failed", zap.String("operation", operation), zap.Error(err))
		return nil, storeErr(err)
	}

	rec, err = s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return nil, storeErr(err)
	}
	if rec == nil {
		return nil, licensedomain.ErrNotFound
	}

	s.metrics.RecordLifecycle(ctx, operation)
	s.log.Info("key state changed",
		zap.String("id", rec.ID.String()),
		zap.String("operation", operation),
	)
	return rec, nil
}

func (s *Service) reject(ctx context.Context, reason licensedomain.Reason) *licensedomain.Verdict {
	s.metrics.RecordVerify(ctx, string(reason))
	return &licensedomain.Verdict{Valid: false, Reason: reason}
}

func (s *Service) daysAllowed(days int) bool {
	if len(s.allowed) == 0 {
		return true
	}
	for _, d := range s.allowed {
		if d == days {
			return true
		}
	}
	return false
}

func parseID(id string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return 0, licensedomain.ErrInvalidKeyID
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, licensedomain.ErrInvalidKeyID
	}
	return snowflake.ID(parsed), nil
}

// storeErr classifies a record-store fault so callers can map it to a
// retry or 5xx response instead of a negative verdict.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", licensedomain.ErrStoreUnavailable, err)
}
