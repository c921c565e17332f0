package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/keygatehq/keygate/internal/audit/domain"
	"github.com/keygatehq/keygate/internal/audit/masking"
	"github.com/keygatehq/keygate/internal/clock"
	"github.com/keygatehq/keygate/internal/observability/obscontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

// Record writes one trail entry. Failures are reported but must not fail
// the admin operation they describe; callers decide whether to ignore the
// error.
func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	actorType := strings.TrimSpace(entry.ActorType)
	if actorType == "" {
		actorType = "admin"
	}

	payload := map[string]any{}
	for key, value := range entry.Metadata {
		if key == "" {
			continue
		}
		if key == "key" {
			if raw, ok := value.(string); ok {
				payload[key] = masking.MaskSecret(raw)
				continue
			}
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	row := auditdomain.AuditLog{
		ID:        s.genID.Generate(),
		ActorType: actorType,
		Action:    action,
		TargetID:  normalize(entry.TargetID),
		Metadata:  datatypes.JSONMap(payload),
		IPAddress: normalize(entry.IPAddress),
		UserAgent: normalize(entry.UserAgent),
		CreatedAt: s.clock.Now().UnixMilli(),
	}

	if err := s.repo.Insert(ctx, s.db, &row); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	if filter.Limit <= 0 || filter.Limit > auditdomain.DefaultListLimit {
		filter.Limit = auditdomain.DefaultListLimit
	}
	return s.repo.List(ctx, s.db, filter)
}

func normalize(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
