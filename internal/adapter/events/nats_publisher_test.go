package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"diamond-custody-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent []message
	err  error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, message{subject: subject, data: data})
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "")

	ev := &domain.CustodyEvent{
		Type:       domain.EventLoanApproved,
		MerchantID: "borrower-1",
		TxHash:     "0xabc",
		Fields:     map[string]string{"loan_id": "7"},
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(context.Background(), ev))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, "custody.loan_approved", conn.sent[0].subject)

	var got domain.CustodyEvent
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &got))
	assert.Equal(t, *ev, got)
}

func TestNATSPublisher_SubjectPrefix(t *testing.T) {
	pub := NewNATSPublisher(&fakeConn{}, "staging.custody")
	assert.Equal(t, "staging.custody.offer_placed", pub.Subject(domain.EventOfferPlaced))
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	pub := NewNATSPublisher(conn, "custody")

	err := pub.Publish(context.Background(), &domain.CustodyEvent{Type: domain.EventAssetRegistered})
	assert.ErrorContains(t, err, "publishing asset_registered")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn.err = nil
	assert.ErrorIs(t, pub.Publish(ctx, &domain.CustodyEvent{Type: domain.EventAssetRegistered}), context.Canceled)
	assert.Empty(t, conn.sent)
}
