package domain

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address is a base58check encoded Tezos address. The zero value means the
// address is not known yet.
type Address string

// AddressKind selects the base58 prefix used when encoding an address.
type AddressKind int

const (
	KindEd25519 AddressKind = iota // tz1
	KindSecp256k1                  // tz2
	KindP256                       // tz3
	KindContract                   // KT1
)

const (
	addressPayloadLength = 20
	checksumLength       = 4
)

var (
	ErrEmptyAddress   = errors.New("address is empty")
	ErrInvalidAddress = errors.New("invalid address")

	addressPrefixes = map[AddressKind][]byte{
		KindEd25519:   {6, 161, 159},
		KindSecp256k1: {6, 161, 161},
		KindP256:      {6, 161, 164},
		KindContract:  {2, 90, 121},
	}
)

// EncodeAddress builds an address of the given kind from a 20 byte hash.
func EncodeAddress(kind AddressKind, payload []byte) (Address, error) {
	prefix, ok := addressPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown address kind %d", kind)
	}
	if len(payload) != addressPayloadLength {
		return "", fmt.Errorf("address payload must be %d bytes, got %d", addressPayloadLength, len(payload))
	}

	raw := make([]byte, 0, len(prefix)+len(payload)+checksumLength)
	raw = append(raw, prefix...)
	raw = append(raw, payload...)
	raw = append(raw, checksum(raw)...)

	return Address(base58.Encode(raw)), nil
}

// ParseAddress validates s and returns it as an Address.
func ParseAddress(s string) (Address, error) {
	addr := Address(s)
	if err := addr.Validate(); err != nil {
		return "", err
	}
	return addr, nil
}

// Validate checks the base58 encoding, the prefix and the checksum.
func (a Address) Validate() error {
	if a == "" {
		return ErrEmptyAddress
	}

	_, err := a.kind()
	return err
}

// IsContract reports whether a is an originated (KT1) address.
func (a Address) IsContract() bool {
	kind, err := a.kind()
	return err == nil && kind == KindContract
}

func (a Address) String() string {
	return string(a)
}

func (a Address) kind() (AddressKind, error) {
	raw, err := base58.Decode(string(a))
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidAddress, a, err)
	}

	const prefixLength = 3
	if len(raw) != prefixLength+addressPayloadLength+checksumLength {
		return 0, fmt.Errorf("%w %q: unexpected length %d", ErrInvalidAddress, a, len(raw))
	}

	body, sum := raw[:len(raw)-checksumLength], raw[len(raw)-checksumLength:]
	if !bytes.Equal(sum, checksum(body)) {
		return 0, fmt.Errorf("%w %q: checksum mismatch", ErrInvalidAddress, a)
	}

	for kind, prefix := range addressPrefixes {
		if bytes.Equal(body[:prefixLength], prefix) {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w %q: unknown prefix", ErrInvalidAddress, a)
}

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}
