// Package link implements Oneiros's content-addressed identity: a
// canonical byte encoding over a (label, identity-fields...) tuple, with
// a URL-safe base64 text form and a label-prefix check used for
// narrowing an untyped Link to a domain-specific one.
//
// The encoding is a little-endian varint / length-prefixed scheme
// equivalent to postcard's: strings and nested Links are length-prefixed
// with an LEB128 varint, unsigned integers are encoded directly as a
// varint with no prefix, and tuple position (not a tag) determines
// meaning. It is one-way: a Link's bytes are never decoded back into a
// tuple, only compared or prefix-checked.
package link

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Link is the canonical byte form of a content-addressed identity.
type Link struct {
	bytes []byte
}

// Field is anything that can appear after the label in a Link tuple:
// a string, a nested Link's bytes, or an unsigned integer.
type Field interface {
	encodeInto(buf *bytes.Buffer)
}

type stringField string

func (s stringField) encodeInto(buf *bytes.Buffer) {
	encodeBytes(buf, []byte(s))
}

// String wraps a string as an identity field.
func String(s string) Field { return stringField(s) }

type linkField struct{ l Link }

func (f linkField) encodeInto(buf *bytes.Buffer) {
	encodeBytes(buf, f.l.bytes)
}

// Nested wraps an existing Link as an identity field (used e.g. by
// Connection's from_link/to_link).
func Nested(l Link) Field { return linkField{l} }

type uintField uint64

func (u uintField) encodeInto(buf *bytes.Buffer) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(u))
	buf.Write(tmp[:n])
}

// Uint wraps an unsigned integer as an identity field.
func Uint(v uint64) Field { return uintField(v) }

func encodeBytes(buf *bytes.Buffer, b []byte) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(b)))
	buf.Write(tmp[:n])
	buf.Write(b)
}

func encodeLabel(buf *bytes.Buffer, label string) {
	encodeBytes(buf, []byte(label))
}

// New builds a Link from a label and its identity fields, in the order
// they must appear for two entities with the same tuple to hash equal.
func New(label string, fields ...Field) Link {
	var buf bytes.Buffer
	encodeLabel(&buf, label)
	for _, f := range fields {
		f.encodeInto(&buf)
	}
	return Link{bytes: buf.Bytes()}
}

// Bytes returns the canonical byte form.
func (l Link) Bytes() []byte {
	out := make([]byte, len(l.bytes))
	copy(out, l.bytes)
	return out
}

// Equal reports byte equality between two Links.
func (l Link) Equal(other Link) bool {
	return bytes.Equal(l.bytes, other.bytes)
}

// IsZero reports whether this Link has never been assigned.
func (l Link) IsZero() bool { return len(l.bytes) == 0 }

var b64 = base64.URLEncoding.WithPadding(base64.NoPadding)

// String renders the URL-safe, unpadded base64 text form.
func (l Link) String() string {
	return b64.EncodeToString(l.bytes)
}

// Parse decodes the text form back into a Link. No structural
// validation is performed beyond being valid base64 — the canonical
// bytes are opaque.
func Parse(s string) (Link, error) {
	raw, err := b64.DecodeString(s)
	if err != nil {
		return Link{}, fmt.Errorf("link: malformed text form: %w", err)
	}
	return Link{bytes: raw}, nil
}

// HasLabel reports whether the Link's canonical bytes begin with the
// encoding of the given label string.
func (l Link) HasLabel(label string) bool {
	var buf bytes.Buffer
	encodeLabel(&buf, label)
	prefix := buf.Bytes()
	return len(l.bytes) >= len(prefix) && bytes.Equal(l.bytes[:len(prefix)], prefix)
}

// MarshalText implements encoding.TextMarshaler.
func (l Link) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Link) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
