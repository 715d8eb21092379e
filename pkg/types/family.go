package types

import "time"

// FamilyTreeMember is a node of the family tree. Parents and spouse point at
// other nodes; ProfileID links the node to a member account when there is one.
type FamilyTreeMember struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Gender    *string   `db:"gender" json:"gender"`
	BirthDate *Date     `db:"birth_date" json:"birth_date"`
	DeathDate *Date     `db:"death_date" json:"death_date"`
	FatherID  *string   `db:"father_id" json:"father_id"`
	MotherID  *string   `db:"mother_id" json:"mother_id"`
	SpouseID  *string   `db:"spouse_id" json:"spouse_id"`
	ProfileID *string   `db:"profile_id" json:"profile_id"`
	Bio       *string   `db:"bio" json:"bio"`
	PhotoPath *string   `db:"photo_path" json:"photo_path"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type FamilyTreeMemberInput struct {
	FullName  string `json:"full_name" form:"full_name" validate:"required,max=200"`
	Gender    string `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate *Date  `json:"birth_date" form:"birth_date"`
	DeathDate *Date  `json:"death_date" form:"death_date"`
	FatherID  string `json:"father_id" form:"father_id"`
	MotherID  string `json:"mother_id" form:"mother_id"`
	SpouseID  string `json:"spouse_id" form:"spouse_id"`
	ProfileID string `json:"profile_id" form:"profile_id"`
	Bio       string `json:"bio" form:"bio" validate:"max=10000"`
}

type FamilyTreeMemberPatch struct {
	FullName  Optional[string] `db:"full_name" json:"full_name" form:"full_name" validate:"omitnil,min=1,max=200"`
	Gender    Optional[string] `db:"gender" json:"gender" form:"gender" validate:"omitnil,oneof=male female other"`
	BirthDate Optional[Date]   `db:"birth_date" json:"birth_date" form:"birth_date"`
	DeathDate Optional[Date]   `db:"death_date" json:"death_date" form:"death_date"`
	FatherID  Optional[string] `db:"father_id" json:"father_id" form:"father_id"`
	MotherID  Optional[string] `db:"mother_id" json:"mother_id" form:"mother_id"`
	SpouseID  Optional[string] `db:"spouse_id" json:"spouse_id" form:"spouse_id"`
	ProfileID Optional[string] `db:"profile_id" json:"profile_id" form:"profile_id"`
	Bio       Optional[string] `db:"bio" json:"bio" form:"bio" validate:"omitnil,max=10000"`
}
