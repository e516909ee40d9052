// Package id implements Oneiros's two-variant identifier: a time-ordered
// legacy UUID and a content-addressed SHA-256 hash, unified behind a
// single text form.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind discriminates the two variants of Id.
type Kind uint8

const (
	// KindLegacy is a time-ordered UUIDv7 identifier.
	KindLegacy Kind = iota
	// KindContent is a SHA-256 content hash.
	KindContent
)

// Id is a discriminated identifier: either a time-ordered UUID (Legacy)
// or a 256-bit content hash (Content). The zero value is not a valid Id.
type Id struct {
	kind    Kind
	legacy  uuid.UUID
	content [sha256.Size]byte
}

// NewLegacy creates a fresh time-ordered Id.
func NewLegacy() (Id, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return Id{}, fmt.Errorf("id: generate uuidv7: %w", err)
	}
	return Id{kind: KindLegacy, legacy: u}, nil
}

// LegacyFromUUID wraps an existing UUID as a Legacy Id.
func LegacyFromUUID(u uuid.UUID) Id {
	return Id{kind: KindLegacy, legacy: u}
}

// ContentFromHash wraps a 32-byte SHA-256 digest as a Content Id.
func ContentFromHash(sum [sha256.Size]byte) Id {
	return Id{kind: KindContent, content: sum}
}

// ContentFromBytes hashes the given bytes and returns a Content Id.
func ContentFromBytes(data []byte) Id {
	return Id{kind: KindContent, content: sha256.Sum256(data)}
}

// Kind reports which variant this Id holds.
func (i Id) Kind() Kind { return i.kind }

// IsLegacy reports whether this Id is the time-ordered variant.
func (i Id) IsLegacy() bool { return i.kind == KindLegacy }

// IsContent reports whether this Id is the content-hash variant.
func (i Id) IsContent() bool { return i.kind == KindContent }

// String renders the canonical text form: 36-char hyphenated UUID for
// Legacy, 64-char lowercase hex for Content.
func (i Id) String() string {
	switch i.kind {
	case KindLegacy:
		return i.legacy.String()
	case KindContent:
		return hex.EncodeToString(i.content[:])
	default:
		return ""
	}
}

// Equal reports whether two Ids have the same variant and payload.
func (i Id) Equal(other Id) bool {
	if i.kind != other.kind {
		return false
	}
	switch i.kind {
	case KindLegacy:
		return i.legacy == other.legacy
	case KindContent:
		return i.content == other.content
	default:
		return false
	}
}

// ErrMalformed is returned when a string is neither a hyphenated UUID
// nor a 64-char lowercase hex digest.
var ErrMalformed = errors.New("id: malformed identifier")

// Parse accepts either text form and returns the corresponding Id.
func Parse(s string) (Id, error) {
	if len(s) == 36 {
		if u, err := uuid.Parse(s); err == nil {
			return Id{kind: KindLegacy, legacy: u}, nil
		}
	}
	if len(s) == 64 {
		raw, err := hex.DecodeString(s)
		if err == nil && len(raw) == sha256.Size {
			var sum [sha256.Size]byte
			copy(sum[:], raw)
			return Id{kind: KindContent, content: sum}, nil
		}
	}
	return Id{}, fmt.Errorf("%w: %q", ErrMalformed, s)
}

// MarshalText implements encoding.TextMarshaler.
func (i Id) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Id) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
