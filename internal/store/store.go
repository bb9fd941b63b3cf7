// Package store holds the pieces shared by every collection adapter.
package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by single-document lookups that match nothing.
var ErrNotFound = errors.New("not found")

// InsertResult mirrors the acknowledgement a document store gives for a
// single insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// EscapeLike escapes LIKE/ILIKE wildcards so the value matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
