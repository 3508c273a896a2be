package events

import (
	"context"
	"os"
	"testing"
	"time"

	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryTransport_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	tr := NewMemoryTransport()
	defer tr.Close()

	reqs, err := tr.Requests(ctx)
	require.NoError(t, err)

	id, err := tr.Submit(ctx, entity.TransactionRequest{To: "cosmos1xyz", Amount: "1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	req := <-reqs
	assert.Equal(t, id, req.RequestID)
	assert.Equal(t, "cosmos1xyz", req.To)

	require.NoError(t, tr.Respond(ctx, entity.TransactionResponse{RequestID: id, Hash: "AB"}))
	resp := <-tr.Responses()
	assert.Equal(t, id, resp.RequestID)
	assert.Equal(t, "AB", resp.Hash)
}

func TestMemoryTransport_KeepsCallerID(t *testing.T) {
	tr := NewMemoryTransport()
	defer tr.Close()

	id, err := tr.Submit(context.Background(), entity.TransactionRequest{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", id)
}

func TestMemoryTransport_Close(t *testing.T) {
	tr := NewMemoryTransport()
	reqs, err := tr.Requests(context.Background())
	require.NoError(t, err)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	_, open := <-reqs
	assert.False(t, open)

	_, err = tr.Submit(context.Background(), entity.TransactionRequest{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = tr.Requests(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryTransport_ClosedRejectsWithRoomInQueue(t *testing.T) {
	tr := NewMemoryTransport()
	require.NoError(t, tr.Close())

	// both queues have free slots; every attempt must still see the closed transport
	for range 200 {
		_, err := tr.Submit(context.Background(), entity.TransactionRequest{})
		require.ErrorIs(t, err, ErrClosed)
		require.ErrorIs(t, tr.Respond(context.Background(), entity.TransactionResponse{RequestID: "r"}), ErrClosed)
	}
	assert.Empty(t, tr.requests)
	assert.Empty(t, tr.Responses())
}

func TestDecodeRequest(t *testing.T) {
	req, err := decodeRequest([]byte(`{"to":"bc1q","amount":"0.1"}`), "corr-7")
	require.NoError(t, err)
	assert.Equal(t, "corr-7", req.RequestID)

	req, err = decodeRequest([]byte(`{"requestId":"r1"}`), "corr-7")
	require.NoError(t, err)
	assert.Equal(t, "r1", req.RequestID)

	req, err = decodeRequest([]byte(`{}`), "")
	require.NoError(t, err)
	assert.Len(t, req.RequestID, 36)

	_, err = decodeRequest([]byte(`nope`), "")
	assert.Error(t, err)
}

func TestAMQPTransport_RoundTrip(t *testing.T) {
	url := os.Getenv("MINIWALLET_TEST_AMQP_URL")
	if url == "" {
		t.Skip("MINIWALLET_TEST_AMQP_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := NewAMQPTransport(config.EventsConfig{AMQPURL: url, Exchange: "miniwallet-test"}, zap.NewNop())
	require.NoError(t, err)
	defer tr.Close()

	reqs, err := tr.Requests(ctx)
	require.NoError(t, err)
	id, err := tr.Submit(ctx, entity.TransactionRequest{To: "cosmos1xyz", Amount: "2"})
	require.NoError(t, err)

	select {
	case req := <-reqs:
		assert.Equal(t, id, req.RequestID)
	case <-ctx.Done():
		t.Fatal("request not delivered")
	}
	assert.NoError(t, tr.Respond(ctx, entity.TransactionResponse{RequestID: id}))
}
