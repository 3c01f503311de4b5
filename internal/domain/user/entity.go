package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role is an ordered permission level. Comparison is by numeric rank,
// OPERATOR > TEACHER > STUDENT.
type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleOperator Role = "operator"
)

var roleRank = map[Role]int{
	RoleStudent:  1,
	RoleTeacher:  2,
	RoleOperator: 3,
}

// Rank returns the numeric rank of the role; unknown roles rank 0.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r grants at least the permissions of other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// User represents an account, locally created or synced from Bakaláři.
type User struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	BakalariID   sql.NullString `db:"bakalari_id" json:"bakalari_id,omitempty"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Name         string         `db:"name" json:"name"`
	Role         Role           `db:"role" json:"role"`
	ClassID      *uuid.UUID     `db:"class_id" json:"class_id,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Class is a school class synced from the roster.
type Class struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Grade int       `db:"grade" json:"grade"`
}

// Subject is a school subject synced from the roster.
type Subject struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Abbreviation string    `db:"abbreviation" json:"abbreviation"`
}
