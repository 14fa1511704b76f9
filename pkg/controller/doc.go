// Package controller owns the attribute form for one editing page. It drives
// the Uninitialized → Loading → Rendered/Empty/Error cycle on category changes,
// pre-fills rendered fields from the persisted specifications field, and
// re-serializes every edit back into that field.
//
// Fetches may complete out of order. Each Begin issues a new request token and
// Complete ignores any token that has since been superseded, so the last
// selected category always wins.
package controller
