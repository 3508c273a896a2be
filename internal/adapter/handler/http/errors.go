package http

import (
	"context"
	"errors"
	"fmt"

	"miniwallet/internal/domain"
	"miniwallet/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
)

var errEmptyBody = fmt.Errorf("%w: request body is empty", apperrors.ErrInvalidInput)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusClasses is checked in order; the first matching sentinel decides the status.
var statusClasses = []struct {
	status  int
	targets []error
}{
	{fasthttp.StatusConflict, []error{domain.ErrSendInProgress, apperrors.ErrConflict}},
	{fasthttp.StatusUnprocessableEntity, []error{domain.ErrInsufficientFunds}},
	{fasthttp.StatusBadGateway, []error{domain.ErrSubmissionFailed, apperrors.ErrExternalServiceFailure}},
	{fasthttp.StatusServiceUnavailable, []error{
		domain.ErrConnectivity, domain.ErrNoEndpoints, domain.ErrDegradedClient, apperrors.ErrTimeout,
	}},
	{fasthttp.StatusGatewayTimeout, []error{context.DeadlineExceeded}},
	{fasthttp.StatusNotFound, []error{
		domain.ErrChainNotFound, domain.ErrWalletNotFound, domain.ErrTxNotFound, apperrors.ErrNotFound,
	}},
	{fasthttp.StatusBadRequest, []error{
		domain.ErrInvalidMnemonic, domain.ErrInvalidPrivateKey, domain.ErrInvalidAddress,
		domain.ErrInvalidRecipient, domain.ErrInvalidAmount, domain.ErrMnemonicMismatch,
		apperrors.ErrInvalidInput,
	}},
	{fasthttp.StatusNotImplemented, []error{domain.ErrAdapterUnimplemented, apperrors.ErrNotSupported}},
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	if err == nil {
		return fasthttp.StatusOK
	}
	for _, c := range statusClasses {
		for _, target := range c.targets {
			if errors.Is(err, target) {
				return c.status
			}
		}
	}
	return fasthttp.StatusInternalServerError
}
