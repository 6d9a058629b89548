// Package handoff moves ledger administration to the minter in two phases:
// every ledger first names the minter as pending admin, then the minter
// accepts all of them in one call.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/gateway"
	"github.com/compose-network/bridge-deployer/internal/logger"
)

const (
	DefaultSetAdminEntrypoint     = "set_administrator"
	DefaultConfirmAdminEntrypoint = "confirm_tokens_administrator"
)

var (
	ErrHandoffIncomplete = errors.New("admin handoff incomplete")
	ErrUnknownContract   = errors.New("contract is not part of the handoff")
	ErrAlreadyConfirmed  = errors.New("admin handoff already confirmed")
)

type (
	// Entrypoints names the ledger and minter entrypoints of the handoff.
	Entrypoints struct {
		SetAdmin     string
		ConfirmAdmin string
	}

	Option func(*Transfer)

	// Transfer tracks the handoff of a fixed set of ledgers. Confirm is only
	// possible once Propose succeeded for every ledger.
	Transfer struct {
		invoker     gateway.Invoker
		minter      domain.Address
		ledgers     []domain.Address
		proposed    map[domain.Address]bool
		confirmed   bool
		entrypoints Entrypoints
		logger      *slog.Logger
	}
)

func DefaultEntrypoints() Entrypoints {
	return Entrypoints{
		SetAdmin:     DefaultSetAdminEntrypoint,
		ConfirmAdmin: DefaultConfirmAdminEntrypoint,
	}
}

// WithEntrypoints overrides the entrypoint names. Empty names keep the
// defaults.
func WithEntrypoints(e Entrypoints) Option {
	return func(t *Transfer) {
		if e.SetAdmin != "" {
			t.entrypoints.SetAdmin = e.SetAdmin
		}
		if e.ConfirmAdmin != "" {
			t.entrypoints.ConfirmAdmin = e.ConfirmAdmin
		}
	}
}

// New prepares the handoff of ledgers to minter. The order of ledgers is the
// order they are listed in the confirmation.
func New(invoker gateway.Invoker, minter domain.Address, ledgers []domain.Address, opts ...Option) (*Transfer, error) {
	if !minter.IsContract() {
		return nil, fmt.Errorf("minter %q is not an originated contract", minter)
	}
	if len(ledgers) == 0 {
		return nil, errors.New("no ledgers to hand off")
	}

	proposed := make(map[domain.Address]bool, len(ledgers))
	for _, ledger := range ledgers {
		if !ledger.IsContract() {
			return nil, fmt.Errorf("ledger %q is not an originated contract", ledger)
		}
		if _, ok := proposed[ledger]; ok {
			return nil, fmt.Errorf("ledger %s listed twice", ledger)
		}
		proposed[ledger] = false
	}

	t := &Transfer{
		invoker:     invoker,
		minter:      minter,
		ledgers:     slices.Clone(ledgers),
		proposed:    proposed,
		entrypoints: DefaultEntrypoints(),
		logger:      logger.Named("admin_handoff"),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Propose names the minter as pending admin of ledger.
func (t *Transfer) Propose(ctx context.Context, ledger domain.Address) error {
	done, ok := t.proposed[ledger]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContract, ledger)
	}
	if t.confirmed {
		return ErrAlreadyConfirmed
	}
	if done {
		return fmt.Errorf("admin of %s already proposed", ledger)
	}

	t.logger.With("ledger", ledger, "minter", t.minter).Info("proposing minter as ledger admin")

	if _, err := t.invoker.Invoke(ctx, ledger, t.entrypoints.SetAdmin, t.minter); err != nil {
		return &domain.InvocationError{Contract: ledger, Entrypoint: t.entrypoints.SetAdmin, Err: err}
	}

	t.proposed[ledger] = true
	return nil
}

// MarkProposed records a proposal confirmed by an earlier run.
func (t *Transfer) MarkProposed(ledger domain.Address) error {
	if _, ok := t.proposed[ledger]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContract, ledger)
	}
	t.proposed[ledger] = true
	return nil
}

// Confirm makes the minter accept administration of every ledger.
func (t *Transfer) Confirm(ctx context.Context) error {
	if t.confirmed {
		return ErrAlreadyConfirmed
	}
	if pending := t.Pending(); len(pending) > 0 {
		return fmt.Errorf("%w: %d of %d ledgers not proposed: %v", ErrHandoffIncomplete, len(pending), len(t.ledgers), pending)
	}

	t.logger.With("minter", t.minter, "ledgers", t.ledgers).Info("confirming ledger administration")

	if _, err := t.invoker.Invoke(ctx, t.minter, t.entrypoints.ConfirmAdmin, slices.Clone(t.ledgers)); err != nil {
		return &domain.InvocationError{Contract: t.minter, Entrypoint: t.entrypoints.ConfirmAdmin, Err: err}
	}

	t.confirmed = true
	return nil
}

// Pending lists the ledgers whose proposal has not been confirmed yet.
func (t *Transfer) Pending() []domain.Address {
	var pending []domain.Address
	for _, ledger := range t.ledgers {
		if !t.proposed[ledger] {
			pending = append(pending, ledger)
		}
	}
	return pending
}

// Ledgers returns the ledgers in confirmation order.
func (t *Transfer) Ledgers() []domain.Address {
	return slices.Clone(t.ledgers)
}

func (t *Transfer) Confirmed() bool {
	return t.confirmed
}
