// Package fetcher retrieves a category's grouped attribute schema from the
// lookup service. Every call issues a fresh request; callers guard against
// out-of-order completions themselves.
package fetcher
