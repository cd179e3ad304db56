// Package engine dispatches files to transformers.
//
// For each file the engine picks the first matching rule of its RuleSet,
// builds a ScopedFS rooted at the file's directory and hands both to the
// rule's factory. Transformers read their dependencies through the ScopedFS,
// which sends those files back through the engine with the same dependency
// graph, so an imported file is transformed exactly like a top-level one and
// import cycles are reported instead of recursing forever.
//
// Dispatch is synchronous and depth-first. An Engine is read-only after New
// and may be shared between goroutines as long as each top-level file gets
// its own depgraph.Graph.
package engine
