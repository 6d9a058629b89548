package gateway

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem"
	"github.com/compose-network/bridge-deployer/internal/logger"
	"golang.org/x/crypto/blake2b"
)

const (
	KindOrigination = "origination"
	KindTransaction = "transaction"
)

type (
	// JournalEntry is one operation recorded by DryRun.
	JournalEntry struct {
		Counter    uint64         `json:"counter"`
		Kind       string         `json:"kind"`
		Contract   string         `json:"contract,omitempty"`
		Address    domain.Address `json:"address,omitempty"`
		Entrypoint string         `json:"entrypoint,omitempty"`
		Storage    any            `json:"storage,omitempty"`
		Parameters any            `json:"parameters,omitempty"`
		RecordedAt time.Time      `json:"recorded_at"`
	}

	// DryRun submits nothing. It journals every operation and derives
	// contract addresses from the source and an operation counter, so the
	// same plan always yields the same addresses.
	DryRun struct {
		source      domain.Address
		journalPath string
		writer      filesystem.Writer
		now         func() time.Time
		logger      *slog.Logger

		mu      sync.Mutex
		counter uint64
		entries []JournalEntry
	}
)

// NewDryRun returns a dry-run gateway acting as source. The journal is
// rewritten at journalPath after every operation.
func NewDryRun(source domain.Address, journalPath string, writer filesystem.Writer) *DryRun {
	return &DryRun{
		source:      source,
		journalPath: journalPath,
		writer:      writer,
		now:         time.Now,
		logger:      logger.Named("dry_run_gateway"),
	}
}

func (g *DryRun) Originate(_ context.Context, code contracts.Code, storage any) (domain.Address, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	addr, err := g.deriveAddress(g.counter)
	if err != nil {
		return "", err
	}

	entry := JournalEntry{
		Counter:  g.counter,
		Kind:     KindOrigination,
		Contract: string(code.Name),
		Address:  addr,
		Storage:  storage,
	}
	if err := g.record(entry); err != nil {
		return "", err
	}

	g.logger.With("contract", code.Name, "address", addr).Info("recorded origination")
	return addr, nil
}

func (g *DryRun) Invoke(_ context.Context, contract domain.Address, entrypoint string, params any) (Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	entry := JournalEntry{
		Counter:    g.counter,
		Kind:       KindTransaction,
		Address:    contract,
		Entrypoint: entrypoint,
		Parameters: params,
	}
	if err := g.record(entry); err != nil {
		return Receipt{}, err
	}

	g.logger.With("contract", contract, "entrypoint", entrypoint).Info("recorded invocation")
	return Receipt{OperationHash: fmt.Sprintf("dry-run-%d", g.counter)}, nil
}

func (g *DryRun) PublicKeyHash(context.Context) (domain.Address, error) {
	return g.source, nil
}

// Restore reloads the journal of an earlier run so numbering continues after
// its last operation and resumed runs never derive an address twice. A
// missing journal leaves the gateway empty.
func (g *DryRun) Restore(reader filesystem.Reader) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.journalPath == "" {
		return nil
	}

	var entries []JournalEntry
	if err := reader.ReadJSON(g.journalPath, &entries); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to restore dry-run journal: %w", err)
	}

	g.entries = entries
	g.counter = 0
	for _, entry := range entries {
		g.counter = max(g.counter, entry.Counter)
	}

	g.logger.With("path", g.journalPath, "operations", len(entries)).Info("restored dry-run journal")
	return nil
}

// Journal returns the operations recorded so far.
func (g *DryRun) Journal() []JournalEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]JournalEntry(nil), g.entries...)
}

func (g *DryRun) record(entry JournalEntry) error {
	entry.RecordedAt = g.now().UTC()
	g.entries = append(g.entries, entry)

	if g.journalPath == "" {
		return nil
	}
	if err := g.writer.WriteJSON(g.journalPath, g.entries); err != nil {
		return fmt.Errorf("failed to write dry-run journal: %w", err)
	}
	return nil
}

func (g *DryRun) deriveAddress(counter uint64) (domain.Address, error) {
	h, err := blake2b.New(20, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}

	h.Write([]byte(g.source))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)
	h.Write(buf[:])

	return domain.EncodeAddress(domain.KindContract, h.Sum(nil))
}
