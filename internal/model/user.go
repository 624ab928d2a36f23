package model

import "time"

// Account roles stored in users.role. New registrations default to guest;
// role changes are an admin concern and never happen in this service.
const (
	RoleGuest      = "guest"
	RoleSubscriber = "subscriber"
	RoleAdmin      = "admin"
)

// User represents a row in the `users` table. Only the bcrypt hash of the
// password is ever stored.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address used for login.
//  Username     – display name shown in the client.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of guest / subscriber / admin.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
