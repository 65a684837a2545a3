package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the store-assigned identifier. It never changes after creation.
	ID string `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"nombre" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"apellido" db:"last_name"`

	// Username is the unique login name chosen by the user.
	Username string `json:"usuario" db:"username"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserPatch is a partial update restricted to the mutable user fields.
// A nil field is left untouched. Password carries plaintext until the
// service layer replaces it with a hash.
type UserPatch struct {
	FirstName *string `json:"nombre,omitempty" validate:"omitnil,max=100"`
	LastName  *string `json:"apellido,omitempty" validate:"omitnil,max=100"`
	Username  *string `json:"usuario,omitempty" validate:"omitnil,min=1,max=64"`
	Email     *string `json:"email,omitempty" validate:"omitnil,email"`
	Password  *string `json:"password,omitempty" validate:"omitnil,min=1,bcryptlen"`
}

var userPatchFields = map[string]struct{}{
	"nombre":   {},
	"apellido": {},
	"usuario":  {},
	"email":    {},
	"password": {},
}

// IsUserPatchField reports whether name is a JSON key of UserPatch. The
// comparison is exact.
func IsUserPatchField(name string) bool {
	_, ok := userPatchFields[name]
	return ok
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Username == nil && p.Email == nil && p.Password == nil
}

// Apply copies the set fields onto u. Password is written to PasswordHash
// verbatim, so callers must hash it first.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.PasswordHash = *p.Password
	}
}
