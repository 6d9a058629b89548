package contracts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type (
	Name string

	// Code is the Michelson source of one contract, ready for origination.
	Code struct {
		Name      Name
		Michelson string
	}

	// Set holds the code of every contract of the bridge.
	Set map[Name]Code
)

const (
	NameFungibleLedger Name = "multi_asset"
	NameNftLedger      Name = "nft"
	NameQuorum         Name = "quorum"
	NameMinter         Name = "minter"

	michelsonExtension = ".tz"
)

// Names lists the bridge contracts in origination order.
var Names = []Name{NameFungibleLedger, NameNftLedger, NameQuorum, NameMinter}

// FileName is the name of the compiled Michelson file for n.
func (n Name) FileName() string {
	return string(n) + michelsonExtension
}

// Load reads the Michelson file of every bridge contract from dir.
func Load(dir string) (Set, error) {
	set := make(Set, len(Names))
	for _, name := range Names {
		path := filepath.Join(dir, name.FileName())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s contract: %w", name, err)
		}

		code := strings.TrimSpace(string(data))
		if code == "" {
			return nil, fmt.Errorf("contract file %s is empty", path)
		}
		set[name] = Code{Name: name, Michelson: code}
	}

	return set, nil
}

// Get returns the code of name.
func (s Set) Get(name Name) (Code, error) {
	code, ok := s[name]
	if !ok {
		return Code{}, fmt.Errorf("contract %s is not loaded", name)
	}
	return code, nil
}
