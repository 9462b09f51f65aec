// Package errs declares the error kinds shared by the cache, the filter resolver
// and the reconciliation engine.
//
// None of these kinds is fatal. Callers test for them with errors.Is and decide how
// much data to show:
//
//   - ErrCacheCorrupt: a stored cache envelope could not be decoded. The cache store
//     treats it as a miss and never returns it to callers; it only shows up in logs.
//   - ErrProviderUnavailable: a catalog or record provider call failed. The affected
//     level or partition is left empty and the rest of the pipeline continues.
//   - ErrInvalidSelection: a selection or query was rejected before any provider call.
package errs
