package domain

import "time"

// Session is the verified identity of the current request. The zero value is anonymous.
type Session struct {
	UserID      string
	DisplayName string
	ExpiresAt   time.Time
}

// Anonymous is the session of a request nobody is signed in to.
var Anonymous = Session{}

func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}

// Caller is the outcome of resolving a request's session once at the entry point.
// Err is set when the identity could not be determined at all.
type Caller struct {
	Session Session
	Err     error
}

// StoredSession is the server-side record of an issued session token. Deleting
// it revokes the token before it expires.
type StoredSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
