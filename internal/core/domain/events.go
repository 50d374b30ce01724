package domain

import "time"

// GrantIssuedEvent records that an explicit privilege was added to a user.
type GrantIssuedEvent struct {
	EventID    string
	GrantID    int64
	UserID     int64
	Permission string
	Resource   string
	GrantedBy  int64
	GrantedAt  time.Time
}

// GrantRevokedEvent records that explicit privileges matching a triple were
// removed from a user.
type GrantRevokedEvent struct {
	EventID    string
	UserID     int64
	Permission string
	Resource   string
	RevokedBy  int64
	RevokedAt  time.Time
	Removed    bool
}

// UserLoggedInEvent records a successful credential exchange.
type UserLoggedInEvent struct {
	EventID  string
	UserID   int64
	Username string
	Role     Role
	At       time.Time
	IP       string
}
