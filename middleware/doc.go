// Package middleware provides pipeline middleware. Each one runs wherever it
// is placed in a pipeline, so inside a mount it observes the mount-relative
// path.
package middleware
