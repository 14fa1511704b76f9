// Package schema describes the grouped attribute schema returned by the
// category lookup service and decodes its JSON payload. A schema is an
// ordered list of groups; each group holds an ordered list of attribute
// definitions keyed by a stable identifier. The lookup contract is shipped as
// an embedded OpenAPI document so payloads can be checked before rendering.
package schema
