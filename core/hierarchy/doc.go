// Package hierarchy implements the cascading multi-select filter used to narrow a
// record query, e.g. college > department > program > semester.
//
// A Resolver keeps one selection per level. Selecting at level k resets every deeper
// level and loads level k+1 from the union of the children of everything selected at
// k. The All sentinel ("*") stands for every option currently loaded at a level and
// cannot be combined with explicit ids.
//
// Option lists go through an OptionCache keyed by the caller's scope, so two users
// never see each other's options. Concurrent loads of the same parent are coalesced,
// and a load that was overtaken by a newer selection is discarded rather than applied.
//
// # Usage
//
//	r, _ := hierarchy.NewResolver(provider, store, hierarchy.Session{Scope: "u1"}, opts)
//	_ = r.Start(ctx)
//	_ = r.Select(ctx, 0, "C1")
//	_ = r.Select(ctx, 1, hierarchy.All)
//	tuple, err := r.QueryTuple()
package hierarchy
