// Package utils provides the identity and key normalization helpers shared by the
// cache, hierarchy and reconcile packages: loose value-to-string conversion for join
// keys, display-name folding for name-based de-duplication, and small list parsing.
package utils
