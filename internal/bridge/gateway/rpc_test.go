package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain/domaintest"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	relayOrigination struct {
		Contract string          `json:"contract"`
		Code     string          `json:"code"`
		Storage  json.RawMessage `json:"storage"`
	}

	relayInvocation struct {
		Destination string          `json:"destination"`
		Entrypoint  string          `json:"entrypoint"`
		Parameters  json.RawMessage `json:"parameters"`
	}

	// fakeRelay is served under the "tezos" namespace.
	fakeRelay struct {
		mu          sync.Mutex
		address     string
		rejectWith  error
		delay       time.Duration
		originated  []relayOrigination
		invocations []relayInvocation
	}
)

func (r *fakeRelay) Originate(ctx context.Context, req relayOrigination) (OriginateResponse, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return OriginateResponse{}, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejectWith != nil {
		return OriginateResponse{}, r.rejectWith
	}
	r.originated = append(r.originated, req)
	return OriginateResponse{Address: r.address, OperationHash: "ooAbc"}, nil
}

func (r *fakeRelay) Invoke(req relayInvocation) (Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejectWith != nil {
		return Receipt{}, r.rejectWith
	}
	r.invocations = append(r.invocations, req)
	return Receipt{OperationHash: "opXyz", Level: 42}, nil
}

func (r *fakeRelay) PublicKeyHash() string {
	return domaintest.Implicit(0xaa).String()
}

func startRelay(t *testing.T, relay *fakeRelay, callTimeout time.Duration) *RPC {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("tezos", relay))
	httpServer := httptest.NewServer(server)
	t.Cleanup(func() {
		httpServer.Close()
		server.Stop()
	})

	gw, err := DialRPC(context.Background(), httpServer.URL, callTimeout)
	require.NoError(t, err)
	t.Cleanup(gw.Close)
	return gw
}

func TestRPCOriginate(t *testing.T) {
	kt1 := domaintest.Contract(0x01)

	t.Run("sends code and storage", func(t *testing.T) {
		relay := &fakeRelay{address: kt1.String()}
		gw := startRelay(t, relay, time.Second)

		addr, err := gw.Originate(context.Background(), contracts.Code{Name: contracts.NameQuorum, Michelson: "parameter unit;"}, map[string]int{"threshold": 2})
		require.NoError(t, err)
		assert.Equal(t, kt1, addr)

		require.Len(t, relay.originated, 1)
		assert.Equal(t, "quorum", relay.originated[0].Contract)
		assert.Equal(t, "parameter unit;", relay.originated[0].Code)
		assert.JSONEq(t, `{"threshold":2}`, string(relay.originated[0].Storage))
	})

	t.Run("relay errors are rejections", func(t *testing.T) {
		relay := &fakeRelay{rejectWith: errors.New("balance too low")}
		gw := startRelay(t, relay, time.Second)

		_, err := gw.Originate(context.Background(), contracts.Code{Name: contracts.NameMinter}, nil)
		assert.True(t, errors.Is(err, ErrRejected))
		assert.ErrorContains(t, err, "balance too low")
	})

	t.Run("rejects implicit addresses", func(t *testing.T) {
		relay := &fakeRelay{address: domaintest.Implicit(0x01).String()}
		gw := startRelay(t, relay, time.Second)

		_, err := gw.Originate(context.Background(), contracts.Code{Name: contracts.NameMinter}, nil)
		assert.ErrorContains(t, err, "not an originated contract")
	})

	t.Run("per call timeout", func(t *testing.T) {
		relay := &fakeRelay{address: kt1.String(), delay: time.Second}
		gw := startRelay(t, relay, 50*time.Millisecond)

		_, err := gw.Originate(context.Background(), contracts.Code{Name: contracts.NameMinter}, nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrRejected))
	})
}

func TestRPCInvoke(t *testing.T) {
	relay := &fakeRelay{}
	gw := startRelay(t, relay, time.Second)
	ledger := domaintest.Contract(0x02)

	receipt, err := gw.Invoke(context.Background(), ledger, "set_administrator", domaintest.Contract(0x03))
	require.NoError(t, err)
	assert.Equal(t, Receipt{OperationHash: "opXyz", Level: 42}, receipt)

	require.Len(t, relay.invocations, 1)
	assert.Equal(t, ledger.String(), relay.invocations[0].Destination)
	assert.Equal(t, "set_administrator", relay.invocations[0].Entrypoint)
	assert.JSONEq(t, `"`+domaintest.Contract(0x03).String()+`"`, string(relay.invocations[0].Parameters))
}

func TestRPCIdentity(t *testing.T) {
	gw := startRelay(t, &fakeRelay{}, time.Second)

	require.NoError(t, gw.WaitReady(context.Background(), 3, 10*time.Millisecond))

	pkh, err := gw.PublicKeyHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domaintest.Implicit(0xaa), pkh)

	var _ IdentityProvider = gw
	var _ Gateway = gw
}

func TestRPCWaitReadyTimesOut(t *testing.T) {
	server := httptest.NewServer(rpc.NewServer())
	defer server.Close()

	gw, err := DialRPC(context.Background(), server.URL, time.Second)
	require.NoError(t, err)
	defer gw.Close()

	err = gw.WaitReady(context.Background(), 2, time.Millisecond)
	assert.ErrorContains(t, err, "timed out waiting for relay")
}
