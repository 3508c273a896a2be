package http

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"miniwallet/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, fasthttp.StatusOK},
		{fmt.Errorf("%w: send pending", domain.ErrSendInProgress), fasthttp.StatusConflict},
		{domain.ErrInsufficientFunds, fasthttp.StatusUnprocessableEntity},
		{fmt.Errorf("%w: code 5", domain.ErrSubmissionFailed), fasthttp.StatusBadGateway},
		{fmt.Errorf("%w: all endpoints down", domain.ErrConnectivity), fasthttp.StatusServiceUnavailable},
		{domain.ErrDegradedClient, fasthttp.StatusServiceUnavailable},
		{fmt.Errorf("lookup: %w", context.DeadlineExceeded), fasthttp.StatusGatewayTimeout},
		{domain.ErrChainNotFound, fasthttp.StatusNotFound},
		{domain.ErrWalletNotFound, fasthttp.StatusNotFound},
		{domain.ErrInvalidMnemonic, fasthttp.StatusBadRequest},
		{domain.ErrMnemonicMismatch, fasthttp.StatusBadRequest},
		{invalidInput("limit %d", -1), fasthttp.StatusBadRequest},
		{domain.ErrAdapterUnimplemented, fasthttp.StatusNotImplemented},
		{errors.New("boom"), fasthttp.StatusInternalServerError},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
