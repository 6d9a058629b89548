// Package metadata encodes contract metadata into the big-map fragment that
// Tezos contracts keep under their metadata annotation: the empty key holds a
// pointer URI and, for inline metadata, the "content" key holds the JSON.
package metadata

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// InlinePointer points readers at the "content" entry of the same big-map.
	InlinePointer = "tezos-storage:content"

	pointerKey = ""
	contentKey = "content"
)

// Metadata maps big-map keys to hex encoded bytes.
type Metadata map[string]string

// EncodeURI stores a remote metadata location.
func EncodeURI(uri string) (Metadata, error) {
	if uri == "" {
		return nil, &domain.EncodingError{Subject: "metadata uri", Err: errors.New("uri is empty")}
	}
	if !utf8.ValidString(uri) {
		return nil, &domain.EncodingError{Subject: "metadata uri", Err: errors.New("uri is not valid UTF-8")}
	}

	return Metadata{pointerKey: encodeString(uri)}, nil
}

// EncodeContent stores content inline, serialized as indented JSON.
func EncodeContent(content any) (Metadata, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, &domain.EncodingError{Subject: "metadata content", Err: err}
	}

	return Metadata{
		pointerKey: encodeString(InlinePointer),
		contentKey: common.Bytes2Hex(data),
	}, nil
}

// EncodeRawContent stores already serialized JSON inline, as read from a
// metadata file. The document is re-indented so the stored bytes do not depend
// on the file's formatting.
func EncodeRawContent(raw []byte) (Metadata, error) {
	if !json.Valid(raw) {
		return nil, &domain.EncodingError{Subject: "metadata content", Err: errors.New("content is not valid JSON")}
	}

	return EncodeContent(json.RawMessage(raw))
}

// Decode returns the pointer URI and, when present, the inline content.
func Decode(m Metadata) (string, []byte, error) {
	pointerHex, ok := m[pointerKey]
	if !ok {
		return "", nil, errors.New("metadata has no pointer entry")
	}

	pointer, err := decodeHex(pointerHex)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode pointer: %w", err)
	}

	contentHex, ok := m[contentKey]
	if !ok {
		return string(pointer), nil, nil
	}

	content, err := decodeHex(contentHex)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode content: %w", err)
	}

	return string(pointer), content, nil
}

func encodeString(s string) string {
	return common.Bytes2Hex([]byte(s))
}

func decodeHex(s string) ([]byte, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return data, nil
}
