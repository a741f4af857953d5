package permission

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Grants is the permission map of a role template. A key mapped to true is
// granted; a missing key or false is denied.
//
// In JSON it is written as an object of key to bool. Decoding additionally
// accepts an array of granted keys.
type Grants map[Key]bool

// UnmarshalJSON accepts either {"view_project": true} or ["view_project"].
func (g *Grants) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if bytes.Equal(trimmed, []byte("null")) {
		*g = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var keys []Key
		if err := json.Unmarshal(trimmed, &keys); err != nil {
			return &ValidationError{Field: "permissions", Reason: "expected an array of permission keys"}
		}

		out := make(Grants, len(keys))
		for _, k := range keys {
			out[k] = true
		}

		*g = out

		return nil
	}

	var m map[Key]bool
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return &ValidationError{Field: "permissions", Reason: "expected an object of permission key to boolean"}
	}

	*g = m

	return nil
}

// Granted reports whether key is explicitly granted.
func (g Grants) Granted(key Key) bool {
	return g[key]
}

// Keys returns the granted keys, sorted.
func (g Grants) Keys() []Key {
	out := make([]Key, 0, len(g))
	for k, v := range g {
		if v {
			out = append(out, k)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Validate checks every key against the catalog.
func (g Grants) Validate() error {
	keys := make([]Key, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}

	return Validate("permissions", keys...)
}

// NewGrants returns Grants with every given key granted.
func NewGrants(keys ...Key) Grants {
	out := make(Grants, len(keys))
	for _, k := range keys {
		out[k] = true
	}

	return out
}

// Overlay holds per-user overrides on top of the role template. A key that
// is absent defers to the role; true grants and false revokes.
type Overlay map[Key]bool

// Lookup returns the override for key and whether one is set.
func (o Overlay) Lookup(key Key) (granted, set bool) {
	granted, set = o[key]
	return granted, set
}

// Validate checks every key against the catalog.
func (o Overlay) Validate() error {
	keys := make([]Key, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}

	return Validate("permissions", keys...)
}
