package domain

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSpecValidate(t *testing.T) {
	valid := TokenSpec{
		ForeignContract: "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2",
		ForeignSymbol:   "MKR",
		Symbol:          "wMKR",
		Name:            "Wrapped Maker",
		Decimals:        18,
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
		assert.Equal(t, "9f8F72aA9304c8B593d555F12eF6589cC3A579A2", valid.ForeignKey())
	})

	t.Run("collects every problem", func(t *testing.T) {
		spec := valid
		spec.ForeignContract = "9f8F72aA9304c8B593d555F12eF6589cC3A579A2"
		spec.Symbol = ""
		spec.Decimals = -1

		err := spec.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0x prefixed")
		assert.Contains(t, err.Error(), "symbol is required")
		assert.Contains(t, err.Error(), "decimals")
	})

	t.Run("rejects short addresses", func(t *testing.T) {
		spec := valid
		spec.ForeignContract = "0x1234"
		assert.Error(t, spec.Validate())
	})
}

func TestNftSpecValidate(t *testing.T) {
	spec := NftSpec{
		ForeignContract: "0x06012c8cf97BEaD5deAe237070F9587f8E7A266d",
		ForeignSymbol:   "CK",
		Symbol:          "wCK",
		Name:            "Wrapped CryptoKitties",
	}
	assert.NoError(t, spec.Validate())

	spec.Name = ""
	assert.Error(t, spec.Validate())
}

func TestSignerSetValidate(t *testing.T) {
	signer := func(seed byte) Address {
		addr, err := EncodeAddress(KindEd25519, bytes.Repeat([]byte{seed}, 20))
		require.NoError(t, err)
		return addr
	}
	signers := map[string]Address{"alice": signer(1), "bob": signer(2), "carol": signer(3)}

	for _, threshold := range []int{1, 2, 3} {
		assert.NoError(t, SignerSet{Signers: signers, Threshold: threshold}.Validate(), "threshold %d", threshold)
	}

	for _, threshold := range []int{-1, 0, 4} {
		err := SignerSet{Signers: signers, Threshold: threshold}.Validate()

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), "threshold %d", threshold)
		assert.Equal(t, "threshold", cfgErr.Field)
	}

	t.Run("empty set", func(t *testing.T) {
		var cfgErr *ConfigError
		assert.True(t, errors.As(SignerSet{Threshold: 1}.Validate(), &cfgErr))
	})

	t.Run("contract signer", func(t *testing.T) {
		kt1, err := EncodeAddress(KindContract, bytes.Repeat([]byte{9}, 20))
		require.NoError(t, err)

		err = SignerSet{Signers: map[string]Address{"multisig": kt1}, Threshold: 1}.Validate()
		assert.ErrorContains(t, err, "implicit account")
	})
}

func TestStripForeignPrefix(t *testing.T) {
	assert.Equal(t, "abcd", StripForeignPrefix("0xabcd"))
	assert.Equal(t, "abcd", StripForeignPrefix("0Xabcd"))
	assert.Equal(t, "abcd", StripForeignPrefix("abcd"))
}
