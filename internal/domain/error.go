package domain

import (
	"errors"
	"fmt"

	"miniwallet/internal/pkg/apperrors"
)

var (
	// ErrAdapterUnimplemented means the chain adapter does not supply the requested capability.
	ErrAdapterUnimplemented = fmt.Errorf("adapter capability unimplemented: %w", apperrors.ErrNotSupported)

	// ErrInvalidMnemonic means the phrase failed wordlist or checksum validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidPrivateKey means the private key could not be decoded.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidAddress means the address does not match the chain's address format.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidRecipient means the recipient of a transfer is not a valid address.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrInvalidAmount means a transfer amount is not a positive number in display units.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds means amount plus fee exceeds the last known balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSubmissionFailed means the node rejected the transaction or it could not be delivered.
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrConnectivity means no endpoint of the chain could be reached.
	ErrConnectivity = errors.New("network unavailable")

	// ErrNoEndpoints means the chain configuration lists no usable endpoints.
	ErrNoEndpoints = errors.New("no endpoints configured for the chain")

	// ErrChainNotFound means the requested chain is not present in the registry.
	ErrChainNotFound = errors.New("chain not found")

	// ErrInvalidChainConfig means a chain configuration document is missing or has invalid fields.
	ErrInvalidChainConfig = errors.New("invalid chain configuration")

	// ErrWalletNotFound means no wallet is stored for the chain.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrSendInProgress means a send for the same wallet has not resolved yet.
	ErrSendInProgress = errors.New("a send is already in progress")

	// ErrDegradedClient means the call hit the degraded stub instead of a live endpoint.
	ErrDegradedClient = errors.New("degraded client: no live endpoint")

	// ErrMnemonicMismatch means the words entered during verification do not match.
	ErrMnemonicMismatch = errors.New("mnemonic verification failed")

	// ErrTxNotFound means the node does not know the transaction hash.
	ErrTxNotFound = errors.New("transaction not found")
)
