// Package lookup is a reference implementation of the category attribute
// lookup service the fetcher talks to. Categories form a tree and a category's
// schema is the union of the attributes attached to it and to every ancestor.
package lookup
