// Package pathmap rewrites logical import paths using user-configured
// aliases (the `mapped_paths` table).
//
// An alias is a path prefix such as `~` or `@components`. A logical path
// matches an alias when it equals the alias or continues it with a `/`, so
// `~/x.html` matches `~` while `~x.html` does not. When several aliases match,
// the longest one wins, which makes `~/sub` take precedence over `~` no
// matter how the table was declared.
package pathmap
