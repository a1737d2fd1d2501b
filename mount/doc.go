// Package mount attaches a nested pipeline below a path prefix.
//
// A Router checks whether the request path starts with its prefix. On a
// match it strips the prefix, runs the nested pipeline on the remainder,
// puts the prefix back and reports a signal chosen by its Policy:
//
//	api, err := mount.New("/api", apiChain)             // AlwaysStop
//	audit, err := mount.NonTerminal("/", auditChain)    // AlwaysContinue
//	auth, err := mount.Filter("/admin", authChain)      // PassThrough
//
// Prefixes are anchored regular expressions, so a plain path is matched
// literally as long as it has no metacharacters. Matching is not segment
// aware: "/api" also matches "/apifoo" and hands "foo" to the nested
// pipeline. Mount "/api/" when only the subtree is wanted.
//
// Mounts compose: a Router is a pipeline.Handler and can itself be mounted.
package mount
