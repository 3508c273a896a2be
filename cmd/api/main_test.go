package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"miniwallet/internal/adapter/events"
	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"
	domainService "miniwallet/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stubDial(t *testing.T, transport domainService.EventTransport, err error) {
	t.Helper()
	prev := dialTransport
	dialTransport = func(config.EventsConfig, *zap.Logger) (domainService.EventTransport, error) {
		return transport, err
	}
	t.Cleanup(func() { dialTransport = prev })
}

func TestStartRequestLoop_MemoryStartsNothing(t *testing.T) {
	stubDial(t, nil, errors.New("must not dial"))

	called := false
	stop, err := startRequestLoop(context.Background(), config.EventsConfig{Transport: "memory"},
		func(context.Context, domainService.EventTransport) error {
			called = true
			return nil
		}, zap.NewNop())
	require.NoError(t, err)
	stop()
	assert.False(t, called)
}

func TestStartRequestLoop_BrokerServesUntilStopped(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tr := events.NewMemoryTransport()
	stubDial(t, tr, nil)

	handled := make(chan string, 1)
	stop, err := startRequestLoop(ctx, config.EventsConfig{Transport: "amqp"},
		func(ctx context.Context, transport domainService.EventTransport) error {
			reqs, err := transport.Requests(ctx)
			if err != nil {
				return err
			}
			for req := range reqs {
				handled <- req.RequestID
			}
			return nil
		}, zap.NewNop())
	require.NoError(t, err)

	_, err = tr.Submit(ctx, entity.TransactionRequest{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", <-handled)

	stop()
	_, err = tr.Submit(ctx, entity.TransactionRequest{})
	assert.ErrorIs(t, err, events.ErrClosed)
}

func TestStartRequestLoop_DialError(t *testing.T) {
	stubDial(t, nil, errors.New("connection refused"))

	_, err := startRequestLoop(context.Background(), config.EventsConfig{Transport: "amqp"},
		func(context.Context, domainService.EventTransport) error { return nil }, zap.NewNop())
	assert.ErrorContains(t, err, "connection refused")
}
