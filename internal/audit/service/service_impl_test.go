package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/keygatehq/keygate/internal/audit/domain"
	"github.com/keygatehq/keygate/internal/audit/repository"
	"github.com/keygatehq/keygate/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		repo:  repository.Provide(),
		clock: clk,
	}, clk
}

func TestRecordMasksKeyMaterial(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	err := svc.Record(ctx, auditdomain.Entry{
		Action:   auditdomain.ActionKeyMinted,
		TargetID: "42",
		Metadata: map[string]any{
			"key":   "eyJkYXlzIjozMH0.deadbeefcafe",
			"scope": "single",
		},
		IPAddress: "203.0.113.9",
		UserAgent: "curl/8.0",
	})
	require.NoError(t, err)

	logs, err := svc.List(ctx, auditdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "admin", entry.ActorType)
	assert.Equal(t, auditdomain.ActionKeyMinted, entry.Action)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "42", *entry.TargetID)
	assert.Equal(t, clk.Now().UnixMilli(), entry.CreatedAt)
	assert.Equal(t, "eyJkYXlzIjozMH0.****cafe", entry.Metadata["key"])
	assert.Equal(t, "single", entry.Metadata["scope"])
}

func TestRecordRejectsEmptyAction(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Record(context.Background(), auditdomain.Entry{Action: "  "})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListFiltersAndOrders(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for _, action := range []string{
		auditdomain.ActionKeyMinted,
		auditdomain.ActionKeyPaid,
		auditdomain.ActionKeyRevoked,
	} {
		require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: action, TargetID: "42"}))
		clk.Advance(time.Minute)
	}

	logs, err := svc.List(ctx, auditdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, auditdomain.ActionKeyRevoked, logs[0].Action)
	assert.Equal(t, auditdomain.ActionKeyMinted, logs[2].Action)

	logs, err = svc.List(ctx, auditdomain.ListFilter{Action: auditdomain.ActionKeyPaid})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	logs, err = svc.List(ctx, auditdomain.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
