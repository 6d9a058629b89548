package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem"
	"github.com/compose-network/bridge-deployer/internal/logger"
)

const (
	stateFile     = "state.json"
	schemaVersion = 1
)

var (
	ErrNoState         = errors.New("no deployment state")
	ErrPlanMismatch    = errors.New("deployment state belongs to a different plan")
	ErrUnsupportedData = errors.New("unsupported deployment state version")
)

type (
	// Snapshot is the persisted progress of a deployment.
	Snapshot struct {
		Version    int                      `json:"version"`
		PlanDigest string                   `json:"plan_digest"`
		Result     *domain.DeploymentResult `json:"result"`
		UpdatedAt  time.Time                `json:"updated_at"`
	}

	// Manager reads and writes state.json in the state directory.
	Manager struct {
		stateDir string
		reader   filesystem.Reader
		writer   filesystem.Writer
		now      func() time.Time
		logger   *slog.Logger
	}

	// Recorder persists every result handed to it under a fixed plan digest.
	Recorder struct {
		manager    *Manager
		planDigest string
	}
)

func NewManager(stateDir string, reader filesystem.Reader, writer filesystem.Writer) *Manager {
	return &Manager{
		stateDir: stateDir,
		reader:   reader,
		writer:   writer,
		now:      time.Now,
		logger:   logger.Named("state_manager"),
	}
}

func (m *Manager) EnsureStateDir() error {
	if err := os.MkdirAll(m.stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

func (m *Manager) Path() string {
	return filepath.Join(m.stateDir, stateFile)
}

// Load reads the saved snapshot. ErrNoState is returned when no deployment
// has been recorded yet.
func (m *Manager) Load() (*Snapshot, error) {
	var snapshot Snapshot
	if err := m.reader.ReadJSON(m.Path(), &snapshot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to read '%s': %w", stateFile, err)
	}

	if snapshot.Version != schemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedData, snapshot.Version)
	}
	if snapshot.Result == nil {
		snapshot.Result = domain.NewDeploymentResult()
	}

	return &snapshot, nil
}

// LoadFor returns the result saved for planDigest. A missing state yields
// ErrNoState; a state saved for another plan yields ErrPlanMismatch.
func (m *Manager) LoadFor(planDigest string) (*domain.DeploymentResult, error) {
	snapshot, err := m.Load()
	if err != nil {
		return nil, err
	}
	if snapshot.PlanDigest != planDigest {
		return nil, fmt.Errorf("%w: saved %s, current %s", ErrPlanMismatch, snapshot.PlanDigest, planDigest)
	}

	m.logger.
		With("path", m.Path(), "updated_at", snapshot.UpdatedAt).
		Info("loaded deployment state")

	return snapshot.Result, nil
}

// Save replaces state.json with a snapshot of result.
func (m *Manager) Save(planDigest string, result *domain.DeploymentResult) error {
	snapshot := Snapshot{
		Version:    schemaVersion,
		PlanDigest: planDigest,
		Result:     result.Clone(),
		UpdatedAt:  m.now().UTC(),
	}

	if err := m.writer.WriteJSON(m.Path(), snapshot); err != nil {
		return fmt.Errorf("failed to write '%s': %w", stateFile, err)
	}

	m.logger.With("path", m.Path()).Debug("deployment state saved")
	return nil
}

// Recorder returns a recorder saving results for planDigest.
func (m *Manager) Recorder(planDigest string) *Recorder {
	return &Recorder{manager: m, planDigest: planDigest}
}

func (r *Recorder) Record(result *domain.DeploymentResult) error {
	return r.manager.Save(r.planDigest, result)
}
