package auth

import (
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

// HasPermission decides whether the subject holds key.
//
// A nil or inactive subject holds nothing. An overlay entry wins over the
// role template in both directions. Otherwise the role template decides, and
// a missing entry denies. Keys outside the catalog are denied.
func HasPermission(s *Subject, key permission.Key) bool {
	if !s.Active() {
		return false
	}

	if !permission.Exists(key) {
		return false
	}

	if granted, set := s.Overlay.Lookup(key); set {
		return granted
	}

	return s.RoleGrants.Granted(key)
}

// HasAnyPermission reports whether the subject holds at least one of keys.
// An empty list means no specific permission is required and passes for any
// active subject.
func HasAnyPermission(s *Subject, keys ...permission.Key) bool {
	if !s.Active() {
		return false
	}

	if len(keys) == 0 {
		return true
	}

	for _, k := range keys {
		if HasPermission(s, k) {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether the subject holds every key.
func HasAllPermissions(s *Subject, keys ...permission.Key) bool {
	if !s.Active() {
		return false
	}

	for _, k := range keys {
		if !HasPermission(s, k) {
			return false
		}
	}

	return true
}

// MissingPermissions returns the keys the subject does not hold, in input order.
func MissingPermissions(s *Subject, keys ...permission.Key) []permission.Key {
	var missing []permission.Key

	for _, k := range keys {
		if !HasPermission(s, k) {
			missing = append(missing, k)
		}
	}

	return missing
}

// EffectivePermissions returns every catalog key the subject holds, in catalog order.
func EffectivePermissions(s *Subject) []permission.Key {
	if !s.Active() {
		return []permission.Key{}
	}

	out := make([]permission.Key, 0)

	for _, k := range permission.AllKeys() {
		if HasPermission(s, k) {
			out = append(out, k)
		}
	}

	return out
}
