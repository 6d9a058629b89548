package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	originateMethod     = "tezos_originate"
	invokeMethod        = "tezos_invoke"
	publicKeyHashMethod = "tezos_publicKeyHash"
)

type (
	OriginateRequest struct {
		Contract string `json:"contract"`
		Code     string `json:"code"`
		Storage  any    `json:"storage"`
	}

	OriginateResponse struct {
		Address       string `json:"address"`
		OperationHash string `json:"operation_hash"`
	}

	InvokeRequest struct {
		Destination string `json:"destination"`
		Entrypoint  string `json:"entrypoint"`
		Parameters  any    `json:"parameters"`
	}

	// RPC submits operations through the JSON-RPC API of an operation relay,
	// which forges, signs and injects them and answers once they are
	// confirmed.
	RPC struct {
		client      *rpc.Client
		callTimeout time.Duration
		logger      *slog.Logger
	}
)

// DialRPC connects to the relay at url. A zero callTimeout leaves calls bound
// only by ctx.
func DialRPC(ctx context.Context, url string, callTimeout time.Duration) (*RPC, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay at %s: %w", url, err)
	}

	return NewRPC(client, callTimeout), nil
}

func NewRPC(client *rpc.Client, callTimeout time.Duration) *RPC {
	return &RPC{
		client:      client,
		callTimeout: callTimeout,
		logger:      logger.Named("rpc_gateway"),
	}
}

func (g *RPC) Close() {
	g.client.Close()
}

// WaitReady polls the relay until it answers or attempts run out.
func (g *RPC) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	var lastErr error
	for i := range max(attempts, 1) {
		_, err := g.PublicKeyHash(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		g.logger.With("attempt", i+1, "err", lastErr).Debug("relay not ready")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("timed out waiting for relay: %w", lastErr)
}

func (g *RPC) Originate(ctx context.Context, code contracts.Code, storage any) (domain.Address, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var res OriginateResponse
	req := OriginateRequest{Contract: string(code.Name), Code: code.Michelson, Storage: storage}
	if err := g.client.CallContext(ctx, &res, originateMethod, req); err != nil {
		return "", classify(err)
	}

	addr, err := domain.ParseAddress(res.Address)
	if err != nil {
		return "", fmt.Errorf("relay returned an invalid contract address: %w", err)
	}
	if !addr.IsContract() {
		return "", fmt.Errorf("relay returned %s, which is not an originated contract", addr)
	}

	g.logger.
		With("contract", code.Name, "address", addr, "operation_hash", res.OperationHash).
		Debug("origination confirmed")

	return addr, nil
}

func (g *RPC) Invoke(ctx context.Context, contract domain.Address, entrypoint string, params any) (Receipt, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var receipt Receipt
	req := InvokeRequest{Destination: contract.String(), Entrypoint: entrypoint, Parameters: params}
	if err := g.client.CallContext(ctx, &receipt, invokeMethod, req); err != nil {
		return Receipt{}, classify(err)
	}

	g.logger.
		With("contract", contract, "entrypoint", entrypoint, "operation_hash", receipt.OperationHash).
		Debug("invocation confirmed")

	return receipt, nil
}

func (g *RPC) PublicKeyHash(ctx context.Context) (domain.Address, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var pkh string
	if err := g.client.CallContext(ctx, &pkh, publicKeyHashMethod); err != nil {
		return "", classify(err)
	}

	return domain.ParseAddress(pkh)
}

func (g *RPC) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.callTimeout)
}

// classify marks errors answered by the relay as rejections. Transport
// failures are returned as is since the operation may still be confirmed.
func classify(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%w: %s (code %d)", ErrRejected, rpcErr.Error(), rpcErr.ErrorCode())
	}
	return err
}
