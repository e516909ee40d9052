package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Ref is a versioned wrapper around Resource. V0 is the only version
// that exists today; the version tag is carried on the wire so a future
// V1 can be introduced without breaking stored data.
type Ref struct {
	Version  int
	Resource Resource
}

// NewRef wraps a Resource as the current (V0) Ref version.
func NewRef(r Resource) Ref {
	return Ref{Version: 0, Resource: r}
}

type refWire struct {
	Version  int      `json:"version"`
	Resource Resource `json:"resource"`
}

// MarshalJSON renders the structural (tagged) wire form used inside
// experience_ref rows.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(refWire{Version: r.Version, Resource: r.Resource})
}

// UnmarshalJSON parses the structural wire form.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var w refWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Version = w.Version
	r.Resource = w.Resource
	return nil
}

// RefToken is the opaque text form of a Ref: ref:<base64url(json(Ref))>,
// suitable for embedding in a URL path segment or a database column.
type RefToken string

var refTokenB64 = base64.URLEncoding.WithPadding(base64.NoPadding)

const refTokenPrefix = "ref:"

// Token renders the Ref as its opaque RefToken text form.
func (r Ref) Token() (RefToken, error) {
	raw, err := json.Marshal(refWire{Version: r.Version, Resource: r.Resource})
	if err != nil {
		return "", fmt.Errorf("model: encode ref: %w", err)
	}
	return RefToken(refTokenPrefix + refTokenB64.EncodeToString(raw)), nil
}

// ParseRefToken decodes a RefToken back into a Ref. The "ref:" prefix is
// accepted but optional on input.
func ParseRefToken(s string) (Ref, error) {
	s = strings.TrimPrefix(s, refTokenPrefix)
	raw, err := refTokenB64.DecodeString(s)
	if err != nil {
		return Ref{}, fmt.Errorf("model: malformed ref token: %w", err)
	}
	var w refWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Ref{}, fmt.Errorf("model: malformed ref token payload: %w", err)
	}
	return Ref{Version: w.Version, Resource: w.Resource}, nil
}

func (r RefToken) String() string { return string(r) }
