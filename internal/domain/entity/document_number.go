package entity

import "time"

// DocumentNumber is one assigned number, persisted so the resolver can scan
// the history of a scope. Scope is the resolved format prefix up to the
// sequence token (e.g. "RE-2026-"); two numbers share a counter iff their
// scopes are equal.
type DocumentNumber struct {
	ID         string
	CompanyID  string
	Type       DocumentType
	Number     string
	Scope      string
	AssignedAt time.Time
}
