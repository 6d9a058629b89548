// Package storage builds the initial storage documents of the bridge
// contracts. Builders are pure: identical inputs give documents that marshal
// to identical bytes.
package storage

import (
	"fmt"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/metadata"
)

// QuorumStorage is the initial storage of the multi-signature quorum.
type QuorumStorage struct {
	Admin     domain.Address            `json:"admin"`
	Threshold int                       `json:"threshold"`
	Signers   map[string]domain.Address `json:"signers"`
	Metadata  metadata.Metadata         `json:"metadata"`
}

// Quorum builds the quorum storage administered by admin.
func Quorum(admin domain.Address, signers domain.SignerSet, meta metadata.Metadata) (*QuorumStorage, error) {
	if err := validateAdmin(admin); err != nil {
		return nil, err
	}
	if err := signers.Validate(); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, domain.NewConfigError("quorum.metadata", "metadata is required")
	}

	members := make(map[string]domain.Address, len(signers.Signers))
	for label, addr := range signers.Signers {
		members[label] = addr
	}

	return &QuorumStorage{
		Admin:     admin,
		Threshold: signers.Threshold,
		Signers:   members,
		Metadata:  meta,
	}, nil
}

func validateAdmin(admin domain.Address) error {
	if err := admin.Validate(); err != nil {
		return &domain.ConfigError{Field: "admin", Err: fmt.Errorf("deploying identity: %w", err)}
	}
	return nil
}
