// Package domaintest provides deterministic addresses for tests.
package domaintest

import (
	"bytes"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
)

// Implicit returns a tz1 address whose payload is seed repeated.
func Implicit(seed byte) domain.Address {
	return mustEncode(domain.KindEd25519, seed)
}

// Contract returns a KT1 address whose payload is seed repeated.
func Contract(seed byte) domain.Address {
	return mustEncode(domain.KindContract, seed)
}

func mustEncode(kind domain.AddressKind, seed byte) domain.Address {
	addr, err := domain.EncodeAddress(kind, bytes.Repeat([]byte{seed}, 20))
	if err != nil {
		panic(err)
	}
	return addr
}
