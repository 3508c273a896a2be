// Package events carries transactionRequest events into the wallet and responses back out.
package events

import (
	"context"
	"errors"
	"sync"

	"miniwallet/internal/domain/entity"
	"miniwallet/internal/domain/service"

	"github.com/google/uuid"
)

var _ service.EventTransport = (*MemoryTransport)(nil)

// ErrClosed is returned by a transport after Close.
var ErrClosed = errors.New("event transport closed")

const memoryQueueSize = 64

// EnsureRequestID assigns a fresh id to requests that arrive without one.
func EnsureRequestID(req *entity.TransactionRequest) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
}

// MemoryTransport is an in-process transport for the API server and tests.
type MemoryTransport struct {
	requests  chan entity.TransactionRequest
	responses chan entity.TransactionResponse
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		requests:  make(chan entity.TransactionRequest, memoryQueueSize),
		responses: make(chan entity.TransactionResponse, memoryQueueSize),
		done:      make(chan struct{}),
	}
}

// closed reports whether Close ran. Sends check it first: a select with free buffer space
// may pick the send case even when done is closed.
func (t *MemoryTransport) closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Submit enqueues a request and returns its id.
func (t *MemoryTransport) Submit(ctx context.Context, req entity.TransactionRequest) (string, error) {
	EnsureRequestID(&req)
	if t.closed() {
		return "", ErrClosed
	}
	select {
	case <-t.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case t.requests <- req:
		return req.RequestID, nil
	}
}

// Responses streams the responses published through Respond.
func (t *MemoryTransport) Responses() <-chan entity.TransactionResponse {
	return t.responses
}

func (t *MemoryTransport) Requests(ctx context.Context) (<-chan entity.TransactionRequest, error) {
	if t.closed() {
		return nil, ErrClosed
	}
	out := make(chan entity.TransactionRequest)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case req := <-t.requests:
				if t.closed() {
					return
				}
				select {
				case out <- req:
				case <-ctx.Done():
					return
				case <-t.done:
					return
				}
			}
		}
	}()
	return out, nil
}

func (t *MemoryTransport) Respond(ctx context.Context, resp entity.TransactionResponse) error {
	if t.closed() {
		return ErrClosed
	}
	select {
	case <-t.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case t.responses <- resp:
		return nil
	}
}

func (t *MemoryTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
