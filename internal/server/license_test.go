package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/keygatehq/keygate/internal/config"
	licensedomain "github.com/keygatehq/keygate/internal/license/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLicenseService struct {
	mintFn     func(ctx context.Context, req licensedomain.MintRequest) (*licensedomain.MintResult, error)
	verifyFn   func(ctx context.Context, key, hardwareID string) (*licensedomain.Verdict, error)
	markPaidFn func(ctx context.Context, id string) (*licensedomain.KeyRecord, error)
	markUsedFn func(ctx context.Context, id string) (*licensedomain.KeyRecord, error)
	revokeFn   func(ctx context.Context, id string) (*licensedomain.KeyRecord, error)
	getFn      func(ctx context.Context, id string) (*licensedomain.KeyRecord, error)
	listFn     func(ctx context.Context, limit int) ([]licensedomain.KeyRecord, error)
}

func (f *fakeLicenseService) Mint(ctx context.Context, req licensedomain.MintRequest) (*licensedomain.MintResult, error) {
	return f.mintFn(ctx, req)
}

func (f *fakeLicenseService) Verify(ctx context.Context, key, hardwareID string) (*licensedomain.Verdict, error) {
	return f.verifyFn(ctx, key, hardwareID)
}

func (f *fakeLicenseService) MarkPaid(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return f.markPaidFn(ctx, id)
}

func (f *fakeLicenseService) MarkUsed(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return f.markUsedFn(ctx, id)
}

func (f *fakeLicenseService) Revoke(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return f.revokeFn(ctx, id)
}

func (f *fakeLicenseService) Get(ctx context.Context, id string) (*licensedomain.KeyRecord, error) {
	return f.getFn(ctx, id)
}

func (f *fakeLicenseService) List(ctx context.Context, limit int) ([]licensedomain.KeyRecord, error) {
	return f.listFn(ctx, limit)
}

const testAdminToken = "admin-token"

func newTestRouter(t *testing.T, svc licensedomain.Service, adminToken string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS())
	r.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:     r,
		cfg:        config.Config{AdminToken: adminToken},
		licenseSvc: svc,
	}
	srv.registerAPIRoutes()
	srv.registerAdminRoutes()

	return r
}

func doRequest(r *gin.Engine, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErrorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Type
}

func TestVerifyKeyReturnsVerdict(t *testing.T) {
	daysLeft := 12
	svc := &fakeLicenseService{
		verifyFn: func(_ context.Context, key, hardwareID string) (*licensedomain.Verdict, error) {
			assert.Equal(t, "some.key", key)
			assert.Equal(t, "HW1", hardwareID)
			return &licensedomain.Verdict{
				Valid:    true,
				Reason:   licensedomain.ReasonOK,
				DaysLeft: &daysLeft,
				RecordID: "42",
			}, nil
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodGet, "/api/verify?key=some.key&hwid=HW1", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var verdict licensedomain.Verdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.True(t, verdict.Valid)
	assert.Equal(t, licensedomain.ReasonOK, verdict.Reason)
	require.NotNil(t, verdict.DaysLeft)
	assert.Equal(t, 12, *verdict.DaysLeft)
}

func TestVerifyKeyNegativeVerdictIsStill200(t *testing.T) {
	svc := &fakeLicenseService{
		verifyFn: func(_ context.Context, _, _ string) (*licensedomain.Verdict, error) {
			return &licensedomain.Verdict{Valid: false, Reason: licensedomain.ReasonRevoked}, nil
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodGet, "/api/verify?key=some.key", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var verdict licensedomain.Verdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.False(t, verdict.Valid)
	assert.Equal(t, licensedomain.ReasonRevoked, verdict.Reason)
}

func TestVerifyKeyStoreFaultIs503(t *testing.T) {
	svc := &fakeLicenseService{
		verifyFn: func(_ context.Context, _, _ string) (*licensedomain.Verdict, error) {
			return nil, licensedomain.ErrStoreUnavailable
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodGet, "/api/verify?key=some.key", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service_unavailable", decodeErrorType(t, w))
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	svc := &fakeLicenseService{
		listFn: func(_ context.Context, _ int) ([]licensedomain.KeyRecord, error) {
			return nil, nil
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodGet, "/admin/keys", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeErrorType(t, w))

	w = doRequest(r, http.MethodGet, "/admin/keys", "wrong-token", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/admin/keys", testAdminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesFailClosedWithoutConfiguredToken(t *testing.T) {
	svc := &fakeLicenseService{}
	r := newTestRouter(t, svc, "")

	w := doRequest(r, http.MethodGet, "/admin/keys", "anything", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMintKey(t *testing.T) {
	svc := &fakeLicenseService{
		mintFn: func(_ context.Context, req licensedomain.MintRequest) (*licensedomain.MintResult, error) {
			assert.Equal(t, "single", req.Scope)
			assert.Equal(t, 30, req.Days)
			assert.Equal(t, "HW1", req.HardwareID)
			return &licensedomain.MintResult{ID: "42", Key: "payload.sig"}, nil
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodPost, "/admin/keys", testAdminToken, `{"scope":"single","days":30,"hwid":"HW1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res licensedomain.MintResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "payload.sig", res.Key)
}

func TestMintKeyRejectsBadRequests(t *testing.T) {
	svc := &fakeLicenseService{
		mintFn: func(_ context.Context, _ licensedomain.MintRequest) (*licensedomain.MintResult, error) {
			return nil, licensedomain.ErrInvalidDays
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodPost, "/admin/keys", testAdminToken, `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeErrorType(t, w))

	w = doRequest(r, http.MethodPost, "/admin/keys", testAdminToken, `{"scope":"single","days":7}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeErrorType(t, w))
}

func TestMarkPaidNotFound(t *testing.T) {
	svc := &fakeLicenseService{
		markPaidFn: func(_ context.Context, id string) (*licensedomain.KeyRecord, error) {
			assert.Equal(t, "42", id)
			return nil, licensedomain.ErrNotFound
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodPost, "/admin/keys/42/paid", testAdminToken, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeErrorType(t, w))
}

func TestListKeysLimitValidation(t *testing.T) {
	var gotLimit int
	svc := &fakeLicenseService{
		listFn: func(_ context.Context, limit int) ([]licensedomain.KeyRecord, error) {
			gotLimit = limit
			return []licensedomain.KeyRecord{}, nil
		},
	}
	r := newTestRouter(t, svc, testAdminToken)

	w := doRequest(r, http.MethodGet, "/admin/keys?limit=abc", testAdminToken, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/admin/keys?limit=-1", testAdminToken, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/admin/keys?limit=10", testAdminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, gotLimit)
}

func TestCORSPreflight(t *testing.T) {
	svc := &fakeLicenseService{}
	r := newTestRouter(t, svc, testAdminToken)

	req := httptest.NewRequest(http.MethodOptions, "/api/verify", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}
