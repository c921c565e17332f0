package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/keygatehq/keygate/internal/audit/domain"
	licensedomain "github.com/keygatehq/keygate/internal/license/domain"
)

type mintKeyRequest struct {
	Scope      string `json:"scope"`
	Days       int    `json:"days"`
	HardwareID string `json:"hwid"`
}

func (s *Server) MintKey(c *gin.Context) {
	var req mintKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.licenseSvc.Mint(c.Request.Context(), licensedomain.MintRequest{
		Scope:      req.Scope,
		Days:       req.Days,
		HardwareID: req.HardwareID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionKeyMinted, resp.ID, map[string]any{
		"key":   resp.Key,
		"scope": string(resp.Payload.Scope),
		"days":  resp.Payload.Days,
	})
	c.JSON(http.StatusOK, resp)
}

// VerifyKey resolves every key problem into a verdict body; only a store
// fault becomes a transport error.
func (s *Server) VerifyKey(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	hwid := strings.TrimSpace(c.Query("hwid"))

	verdict, err := s.licenseSvc.Verify(c.Request.Context(), key, hwid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("verify_reason", string(verdict.Reason))
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) ListKeys(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	keys, err := s.licenseSvc.List(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (s *Server) GetKey(c *gin.Context) {
	rec, err := s.licenseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) MarkPaid(c *gin.Context) {
	rec, err := s.licenseSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionKeyPaid, rec.ID.String(), nil)
	c.JSON(http.StatusOK, rec)
}

func (s *Server) MarkUsed(c *gin.Context) {
	rec, err := s.licenseSvc.MarkUsed(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionKeyUsed, rec.ID.String(), nil)
	c.JSON(http.StatusOK, rec)
}

func (s *Server) RevokeKey(c *gin.Context) {
	rec, err := s.licenseSvc.Revoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionKeyRevoked, rec.ID.String(), nil)
	c.JSON(http.StatusOK, rec)
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	logs, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		Action:   strings.TrimSpace(c.Query("action")),
		TargetID: strings.TrimSpace(c.Query("target_id")),
		Limit:    limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

// recordAudit writes the trail entry for an admin action. The trail never
// vetoes the action it describes.
func (s *Server) recordAudit(c *gin.Context, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorType: "admin",
		Action:    action,
		TargetID:  targetID,
		Metadata:  metadata,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
