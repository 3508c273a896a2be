package rpc

import (
	"context"
	"errors"

	"miniwallet/internal/domain"
	"miniwallet/internal/domain/entity"
	"miniwallet/internal/pkg/apperrors"
	"miniwallet/internal/pkg/retry"
)

// Classify maps a connection or call failure to an error class.
func Classify(err error) entity.ErrorClass {
	var rpcErr *JSONRPCError
	switch {
	case err == nil:
		return entity.ErrorClassNone
	case errors.Is(err, context.Canceled), errors.Is(err, retry.ErrAborted):
		return entity.ErrorClassCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, apperrors.ErrTimeout):
		return entity.ErrorClassTimeout
	case errors.Is(err, ErrOriginRejected):
		return entity.ErrorClassCORS
	case errors.Is(err, ErrProtocol), errors.As(err, &rpcErr):
		return entity.ErrorClassProtocol
	default:
		return entity.ErrorClassNetwork
	}
}

// IsConnectivity reports whether err means the endpoint could not be used at all, as opposed
// to a live node answering with an application error.
func IsConnectivity(err error) bool {
	if errors.Is(err, domain.ErrDegradedClient) || errors.Is(err, domain.ErrConnectivity) {
		return true
	}
	var rpcErr *JSONRPCError
	if errors.As(err, &rpcErr) {
		return false
	}
	switch Classify(err) {
	case entity.ErrorClassNetwork, entity.ErrorClassTimeout, entity.ErrorClassCORS:
		return true
	}
	return false
}
