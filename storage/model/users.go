package model

import (
	"time"
)

// SystemUsername is the reserved username of the sentinel account that
// authors auto-generated document comments. The account is created once at
// storage construction and is not allowed to log in (IsActive is false).
const SystemUsername = "Sistema"

// User represents an account that can access the API. IsStaff grants
// mutation rights on status types, user management and the bulk bridge;
// IsSuperuser additionally exposes other superusers in listings.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin  time.Time `json:"last_login"`

	// Username is the unique login identifier
	Username string `gorm:"uniqueIndex" json:"username"`
	// PasswordHash stores a PHC-formatted argon2id hash of the user's password
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsStaff      bool   `json:"is_staff"`
	IsSuperuser  bool   `json:"is_superuser"`
	IsActive     bool   `json:"is_active"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// Profile is a 1:1 extension of User carrying the registration number
type Profile struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UserID    uint   `gorm:"uniqueIndex" json:"-"`
	Matricula string `json:"matricula"`
}

// TableName keeps the table name aligned with the domain language
func (Profile) TableName() string {
	return "profiles"
}

// Token is an issued opaque auth token. Only the sha256 digest of the token
// value is stored; the cleartext value is returned once at login.
type Token struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created"`
	UserID    uint      `gorm:"index" json:"-"`
	Digest    string    `gorm:"uniqueIndex" json:"-"`
}

// AddUser is the request body for creating or updating a user account.
// Pointer fields distinguish "absent" from zero on update.
type AddUser struct {
	Username    string   `json:"username"`
	Password    *string  `json:"password,omitempty"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	IsStaff     *bool    `json:"is_staff,omitempty"`
	IsSuperuser *bool    `json:"is_superuser,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	Profile     *Profile `json:"profile,omitempty"`
}

// UsersStore abstracts account CRUD, authentication and token handling.
type UsersStore interface {
	// List returns users ordered by first name then last name.
	// includeSuperusers controls whether superuser accounts are visible.
	List(includeSuperusers bool) ([]User, error)
	// Get returns a user by id
	Get(id uint) (*User, error)
	// GetByUsername returns a user by username
	GetByUsername(username string) (*User, error)
	// Create creates a user together with its profile
	Create(req AddUser) (*User, error)
	// Update updates a user and upserts its profile
	Update(id uint, req AddUser) (*User, error)
	// Delete deletes a user
	Delete(id uint) error
	// Authenticate validates username/password and returns the user
	Authenticate(username, password string) (*User, error)
	// ChangePassword verifies oldPassword and stores a hash of newPassword
	ChangePassword(id uint, oldPassword, newPassword string) error
	// SystemUser returns the cached sentinel account
	SystemUser() (*User, error)
	// IssueToken creates a token for the user and returns its cleartext value
	IssueToken(userID uint) (string, error)
	// UserForToken resolves a cleartext token value to its user
	UserForToken(token string) (*User, error)
	// RevokeToken deletes the token with the given cleartext value
	RevokeToken(token string) error
	// RevokeAllTokens deletes every token of the user
	RevokeAllTokens(userID uint) error
}
