package cachestore

import "strings"

const keySeparator = ":"

// Key identifies one cache entry.
type Key struct {
	Namespace string
	Version   string
	Scope     string
	Name      string
}

// String returns the storage key under the current scheme.
func (k Key) String() string {
	return strings.Join([]string{k.Namespace, k.Version, k.Scope, k.Name}, keySeparator)
}

// scopePrefix returns the prefix shared by every key of k's namespace, version and scope.
func (k Key) scopePrefix() string {
	return strings.Join([]string{k.Namespace, k.Version, k.Scope}, keySeparator) + keySeparator
}

// legacyKeys lists the unprefixed keys older deployments used for the same value.
// A scoped key never falls back to the bare name, which was shared by every owner.
func (k Key) legacyKeys() []string {
	if k.Scope == "" {
		return []string{k.Name}
	}
	return []string{k.Name + "_" + k.Scope}
}

// legacyOwnedBy reports whether an unprefixed key belongs to scope or to a scope
// extending it with ":".
func legacyOwnedBy(key, scope string) bool {
	tag := "_" + scope
	return strings.HasSuffix(key, tag) || strings.Contains(key, tag+keySeparator)
}
