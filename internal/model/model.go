// Package model defines domain entities used by services and repositories.
package model

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// User represents an account stored on the server. The password hash never leaves the service layer.
type User struct {
	ID        int64  // PK
	Username  string // unique
	Email     string // unique
	PwdHash   string // encoded argon2id hash
	Role      Role
	CreatedAt time.Time
}

// UserPatch carries optional user changes; nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	PwdHash  *string
	Role     *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PwdHash == nil && p.Role == nil
}

// Principal is the authenticated identity derived from a session token.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Session is the result of a successful register or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// Project groups uploaded files.
type Project struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// File is the metadata row mapping a stored object to its upload details.
type File struct {
	ID               int64
	Filename         string // generated storage name
	OriginalFilename string
	FilePath         string // public path, /uploads/<Filename>
	FileSize         int64
	ProjectID        *int64
	Version          string
	UploadedBy       *int64 // nil once the uploader is deleted
	UploadTime       time.Time
}

// FileView is a File joined with display fields; both are nil when the referenced row is gone.
type FileView struct {
	File
	ProjectName        *string
	UploadedByUsername *string
}

// ShareLink is a public download URL and its QR rendering.
type ShareLink struct {
	DownloadURL string
	QRCode      string // data:image/png;base64,...
}
