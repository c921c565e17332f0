package domain

import (
	"context"
	"errors"
)

// MillisPerDay converts validity days to the epoch-millisecond expiry math
// used everywhere in this package.
const MillisPerDay = 86_400_000

// DefaultListLimit caps admin listings.
const DefaultListLimit = 500

// Reason is the machine-readable outcome of a verification attempt.
type Reason string

const (
	ReasonOK           Reason = "OK"
	ReasonNoKey        Reason = "NO_KEY"
	ReasonBadFormat    Reason = "BAD_FORMAT"
	ReasonBadSignature Reason = "BAD_SIGNATURE"
	ReasonBadPayload   Reason = "BAD_PAYLOAD"
	ReasonNotFound     Reason = "NOT_FOUND"
	ReasonRevoked      Reason = "REVOKED"
	ReasonUnpaid       Reason = "UNPAID"
	ReasonExpired      Reason = "EXPIRED"
	ReasonHWIDMismatch Reason = "HWID_MISMATCH"
)

// Verdict is the structured result of one verification attempt. DaysLeft
// and the record fields are only set on a valid outcome.
type Verdict struct {
	Valid    bool       `json:"valid"`
	Reason   Reason     `json:"reason"`
	DaysLeft *int       `json:"days_left,omitempty"`
	RecordID string     `json:"record_id,omitempty"`
	Payload  *Payload   `json:"payload,omitempty"`
	Record   *KeyRecord `json:"record,omitempty"`
}

type MintRequest struct {
	Scope      string `json:"scope"`
	Days       int    `json:"days"`
	HardwareID string `json:"hwid"`
}

type MintResult struct {
	ID      string  `json:"id"`
	Key     string  `json:"key"`
	Payload Payload `json:"payload"`
}

type Service interface {
	// Mint issues a new key and persists its record in the unpaid,
	// unused, unrevoked state. Caller authenticates the administrator.
	Mint(ctx context.Context, req MintRequest) (*MintResult, error)

	// Verify runs the full decision procedure for a presented key. Key
	// problems resolve into the Verdict; only a store fault is an error.
	Verify(ctx context.Context, key, hardwareID string) (*Verdict, error)

	MarkPaid(ctx context.Context, id string) (*KeyRecord, error)
	MarkUsed(ctx context.Context, id string) (*KeyRecord, error)
	Revoke(ctx context.Context, id string) (*KeyRecord, error)

	Get(ctx context.Context, id string) (*KeyRecord, error)
	List(ctx context.Context, limit int) ([]KeyRecord, error)
}

var (
	ErrMalformedPayload  = errors.New("malformed_payload")
	ErrBadFormat         = errors.New("bad_format")
	ErrInvalidScope      = errors.New("invalid_scope")
	ErrInvalidDays       = errors.New("invalid_days")
	ErrInvalidHardwareID = errors.New("invalid_hardware_id")
	ErrInvalidKeyID      = errors.New("invalid_key_id")
	ErrNotFound          = errors.New("not_found")

	// ErrStoreUnavailable marks record-store faults. It must surface as a
	// transport-level failure, never as a negative Verdict.
	ErrStoreUnavailable = errors.New("store_unavailable")
)
