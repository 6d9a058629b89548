package handoff

import (
	"context"
	"errors"
	"testing"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain/domaintest"
	"github.com/compose-network/bridge-deployer/internal/bridge/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	call struct {
		contract   domain.Address
		entrypoint string
		params     any
	}

	fakeInvoker struct {
		calls  []call
		failOn string
	}
)

func (f *fakeInvoker) Invoke(_ context.Context, contract domain.Address, entrypoint string, params any) (gateway.Receipt, error) {
	f.calls = append(f.calls, call{contract: contract, entrypoint: entrypoint, params: params})
	if entrypoint == f.failOn {
		return gateway.Receipt{}, errors.New("not pending admin")
	}
	return gateway.Receipt{OperationHash: "op"}, nil
}

var (
	minter = domaintest.Contract(0x40)
	fa2    = domaintest.Contract(0x41)
	nft    = domaintest.Contract(0x42)
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("propose then confirm", func(t *testing.T) {
		inv := &fakeInvoker{}
		tr, err := New(inv, minter, []domain.Address{nft, fa2})
		require.NoError(t, err)

		require.NoError(t, tr.Propose(ctx, fa2))
		require.NoError(t, tr.Propose(ctx, nft))
		require.NoError(t, tr.Confirm(ctx))

		assert.True(t, tr.Confirmed())
		assert.Equal(t, []call{
			{contract: fa2, entrypoint: "set_administrator", params: minter},
			{contract: nft, entrypoint: "set_administrator", params: minter},
			{contract: minter, entrypoint: "confirm_tokens_administrator", params: []domain.Address{nft, fa2}},
		}, inv.calls)
	})

	t.Run("confirm requires every proposal", func(t *testing.T) {
		inv := &fakeInvoker{}
		tr, err := New(inv, minter, []domain.Address{nft, fa2})
		require.NoError(t, err)
		require.NoError(t, tr.Propose(ctx, fa2))

		err = tr.Confirm(ctx)
		assert.True(t, errors.Is(err, ErrHandoffIncomplete))
		assert.Equal(t, []domain.Address{nft}, tr.Pending())
		assert.Len(t, inv.calls, 1)
	})

	t.Run("unknown contracts are refused", func(t *testing.T) {
		inv := &fakeInvoker{}
		tr, err := New(inv, minter, []domain.Address{fa2})
		require.NoError(t, err)

		assert.True(t, errors.Is(tr.Propose(ctx, nft), ErrUnknownContract))
		assert.True(t, errors.Is(tr.MarkProposed(nft), ErrUnknownContract))
		assert.Empty(t, inv.calls)
	})

	t.Run("rejections carry contract and entrypoint", func(t *testing.T) {
		inv := &fakeInvoker{failOn: "confirm_tokens_administrator"}
		tr, err := New(inv, minter, []domain.Address{fa2})
		require.NoError(t, err)
		require.NoError(t, tr.Propose(ctx, fa2))

		err = tr.Confirm(ctx)

		var invErr *domain.InvocationError
		require.True(t, errors.As(err, &invErr))
		assert.Equal(t, minter, invErr.Contract)
		assert.Equal(t, "confirm_tokens_administrator", invErr.Entrypoint)
		assert.False(t, tr.Confirmed())
	})

	t.Run("failed proposals stay pending", func(t *testing.T) {
		inv := &fakeInvoker{failOn: "set_administrator"}
		tr, err := New(inv, minter, []domain.Address{fa2})
		require.NoError(t, err)

		var invErr *domain.InvocationError
		require.True(t, errors.As(tr.Propose(ctx, fa2), &invErr))
		assert.Equal(t, fa2, invErr.Contract)
		assert.Equal(t, []domain.Address{fa2}, tr.Pending())
	})

	t.Run("resumed proposals are not resubmitted", func(t *testing.T) {
		inv := &fakeInvoker{}
		tr, err := New(inv, minter, []domain.Address{fa2})
		require.NoError(t, err)
		require.NoError(t, tr.MarkProposed(fa2))

		require.NoError(t, tr.Confirm(ctx))
		assert.Len(t, inv.calls, 1)
		assert.True(t, errors.Is(tr.Confirm(ctx), ErrAlreadyConfirmed))
	})

	t.Run("custom entrypoints", func(t *testing.T) {
		inv := &fakeInvoker{}
		tr, err := New(inv, minter, []domain.Address{fa2}, WithEntrypoints(Entrypoints{ConfirmAdmin: "accept_admin"}))
		require.NoError(t, err)
		require.NoError(t, tr.Propose(ctx, fa2))
		require.NoError(t, tr.Confirm(ctx))

		assert.Equal(t, "set_administrator", inv.calls[0].entrypoint)
		assert.Equal(t, "accept_admin", inv.calls[1].entrypoint)
	})
}

func TestNewValidatesTargets(t *testing.T) {
	_, err := New(&fakeInvoker{}, domaintest.Implicit(1), []domain.Address{fa2})
	assert.Error(t, err)

	_, err = New(&fakeInvoker{}, minter, nil)
	assert.Error(t, err)

	_, err = New(&fakeInvoker{}, minter, []domain.Address{fa2, fa2})
	assert.ErrorContains(t, err, "listed twice")
}
