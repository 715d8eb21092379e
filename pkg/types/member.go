package types

import (
	"slices"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "treasurer"
	RoleSecretary Role = "secretary"
	RoleMember    Role = "member"
)

// Member is a family association profile.
type Member struct {
	ID          string    `db:"id" json:"id"`
	AuthSubject *string   `db:"auth_subject" json:"-"`
	Email       string    `db:"email" json:"email"`
	FullName    string    `db:"full_name" json:"full_name"`
	Phone       *string   `db:"phone" json:"phone"`
	Role        Role      `db:"role" json:"role"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type MemberInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin treasurer secretary member"`
}

type MemberPatch struct {
	Email    Optional[string] `db:"email" json:"email" validate:"omitnil,email"`
	FullName Optional[string] `db:"full_name" json:"full_name" validate:"omitnil,min=1,max=200"`
	Phone    Optional[string] `db:"phone" json:"phone" validate:"omitnil,max=40"`
	Role     Optional[Role]   `db:"role" json:"role" validate:"omitnil,oneof=admin treasurer secretary member"`
	IsActive Optional[bool]   `db:"is_active" json:"is_active"`
}

// SelfEditable reports whether the patch only touches fields a member may
// change on their own profile.
func (p MemberPatch) SelfEditable() bool {
	return !p.Email.IsSet() && !p.Role.IsSet() && !p.IsActive.IsSet()
}

type MemberFilter struct {
	Search string `form:"search"`
	Role   Role   `form:"role"`
	Active *bool  `form:"active"`
}

// Actor is the authenticated member performing a request.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

func (a *Actor) HasRole(roles ...Role) bool {
	if a == nil {
		return false
	}
	return slices.Contains(roles, a.Role)
}
