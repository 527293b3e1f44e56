package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// ApprovalService implements ports.ApprovalService. It holds no token state;
// single use is enforced by the caller.
type ApprovalService struct {
	ttl    time.Duration
	qrSize int
	now    func() time.Time
}

// NewApprovalService creates a service issuing tokens valid for ttl.
func NewApprovalService(ttl time.Duration, qrSize int) *ApprovalService {
	if qrSize <= 0 {
		qrSize = defaultQRSize
	}
	return &ApprovalService{ttl: ttl, qrSize: qrSize, now: time.Now}
}

// Issue snapshots payload in canonical form and binds it to a new token.
func (s *ApprovalService) Issue(action domain.ApprovalAction, payload any) (*domain.ApprovalToken, error) {
	if !action.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown approval action %q", action))
	}
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return nil, apperror.Validation("approval payload must be a JSON value")
	}

	// Millisecond precision so the hash survives the JSON round trip.
	issuedAt := s.now().UTC().Truncate(time.Millisecond)
	token := &domain.ApprovalToken{
		ID:        uuid.NewString(),
		Type:      action,
		Payload:   canonical,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}
	token.Hash, err = ContentHash(token)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return token, nil
}

// Verify recomputes the token hash and compares it to expectedHash, then
// checks expiry. It has no side effects.
func (s *ApprovalService) Verify(token *domain.ApprovalToken, expectedHash string) domain.Verification {
	if token == nil {
		return domain.Verification{Reason: domain.VerifyHashMismatch}
	}
	recomputed, err := ContentHash(token)
	if err != nil || !strings.EqualFold(recomputed, strings.TrimSpace(expectedHash)) {
		return domain.Verification{Reason: domain.VerifyHashMismatch}
	}

	// ExpiresAt is not hashed; the bound from IssuedAt caps a tampered value.
	deadline := token.IssuedAt.Add(s.ttl)
	if token.ExpiresAt.Before(deadline) {
		deadline = token.ExpiresAt
	}
	// IssuedAt carries millisecond precision, so the clock is compared at the same.
	if s.now().UTC().Truncate(time.Millisecond).After(deadline) {
		return domain.Verification{Reason: domain.VerifyExpired}
	}

	return domain.Verification{Valid: true, Payload: token.Payload}
}

// Encode serializes the token for transport as unpadded base64url JSON.
func (s *ApprovalService) Encode(token *domain.ApprovalToken) (string, error) {
	raw, err := json.Marshal(token)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("encoding approval token: %w", err))
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a transported token. It does not verify it.
func (s *ApprovalService) Decode(encoded string) (*domain.ApprovalToken, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(encoded), "="))
	if err != nil {
		return nil, apperror.ErrMalformedToken(err)
	}

	var token domain.ApprovalToken
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&token); err != nil {
		return nil, apperror.ErrMalformedToken(err)
	}

	switch {
	case token.ID == "":
		return nil, apperror.ErrMalformedToken(errors.New("missing id"))
	case !token.Type.Valid():
		return nil, apperror.ErrMalformedToken(fmt.Errorf("unknown type %q", token.Type))
	case len(token.Payload) == 0:
		return nil, apperror.ErrMalformedToken(errors.New("missing payload"))
	case token.Hash == "":
		return nil, apperror.ErrMalformedToken(errors.New("missing hash"))
	case token.IssuedAt.IsZero():
		return nil, apperror.ErrMalformedToken(errors.New("missing issuedAt"))
	}
	return &token, nil
}

type qrContent struct {
	Token string `json:"token"`
	Hash  string `json:"hash"`
}

// RenderQR returns a base64 PNG encoding {token, hash}.
func (s *ApprovalService) RenderQR(token *domain.ApprovalToken) (string, error) {
	encoded, err := s.Encode(token)
	if err != nil {
		return "", err
	}
	content, err := json.Marshal(qrContent{Token: encoded, Hash: token.Hash})
	if err != nil {
		return "", apperror.InternalError(err)
	}

	qr, err := qrcode.New(string(content), qrcode.Medium)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("creating QR code: %w", err))
	}
	png, err := qr.PNG(s.qrSize)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("rendering QR code: %w", err))
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// hashInput fixes field order for the content hash.
type hashInput struct {
	ID       string                `json:"id"`
	Type     domain.ApprovalAction `json:"type"`
	Payload  json.RawMessage       `json:"payload"`
	IssuedAt int64                 `json:"issuedAt"`
}

// ContentHash returns the 0x-prefixed keccak256 of the token's canonical
// id, type, payload and issue time (unix millis).
func ContentHash(token *domain.ApprovalToken) (string, error) {
	payload, err := canonicalJSON(token.Payload)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(hashInput{
		ID:       token.ID,
		Type:     token.Type,
		Payload:  payload,
		IssuedAt: token.IssuedAt.UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return crypto.Keccak256Hash(raw).Hex(), nil
}

// canonicalJSON re-encodes v with sorted object keys and no insignificant
// whitespace. Numbers keep their literal form.
func canonicalJSON(v any) (json.RawMessage, error) {
	var raw []byte
	switch t := v.(type) {
	case json.RawMessage:
		raw = t
	case []byte:
		raw = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	if generic == nil {
		return nil, errors.New("payload is null")
	}
	return json.Marshal(generic)
}
