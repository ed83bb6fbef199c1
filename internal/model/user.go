package model

// Role tags carried by a session user and by the "role" claim of access
// tokens.  CLIENT users browse and buy tickets; ADMIN users may also read
// the sales report.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// User is the authenticated identity held by a session.  It is the record
// persisted by the session store and returned by login and registration.
//
// Fields:
//  ID    – numeric identifier assigned by the backend.
//  Name  – display name shown in the navbar and on purchase details.
//  Email – login address, stored lower-cased.
//  Role  – CLIENT or ADMIN.
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
