package account

import (
	"time"

	"github.com/gofrs/uuid"
)

// Kind selects one of the two disjoint identity spaces. Users and admins live
// in separate tables and never share ids or emails.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) table() string {
	if k == KindAdmin {
		return "admins"
	}
	return "users"
}

type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
