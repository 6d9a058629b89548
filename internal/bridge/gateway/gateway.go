// Package gateway defines the chain operations the deployment depends on and
// provides a JSON-RPC client for an operation relay plus a dry-run
// implementation that only records what would be submitted.
package gateway

import (
	"context"
	"errors"

	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
)

// ErrRejected marks operations the chain or relay refused.
var ErrRejected = errors.New("operation rejected")

type (
	// Receipt describes a confirmed operation.
	Receipt struct {
		OperationHash string `json:"operation_hash"`
		Level         int64  `json:"level,omitempty"`
		ConsumedGas   int64  `json:"consumed_gas,omitempty"`
	}

	// Originator creates contracts. Originate blocks until the operation is
	// confirmed and returns the new contract address.
	Originator interface {
		Originate(ctx context.Context, code contracts.Code, storage any) (domain.Address, error)
	}

	// Invoker calls contract entrypoints and blocks until confirmation.
	Invoker interface {
		Invoke(ctx context.Context, contract domain.Address, entrypoint string, params any) (Receipt, error)
	}

	Gateway interface {
		Originator
		Invoker
	}

	// IdentityProvider exposes the key hash operations are signed with.
	IdentityProvider interface {
		PublicKeyHash(ctx context.Context) (domain.Address, error)
	}
)
