package store

import (
	"context"
	"fmt"
	"strings"

	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const memberTableName = "profiles"

type MemberRepository struct {
	table *Table[types.Member]
}

func NewMemberRepository(db DB) *MemberRepository {
	return &MemberRepository{
		table: NewTable[types.Member](db, memberTableName).
			Immutable("auth_subject").
			OrderBy("full_name ASC"),
	}
}

func (r *MemberRepository) Member(ctx context.Context, id string) (*types.Member, error) {
	return r.table.Get(ctx, id)
}

// MemberBySubject resolves the identity provider subject, falling back to the
// email for members created before their first login.
func (r *MemberRepository) MemberBySubject(ctx context.Context, subject, email string) (*types.Member, error) {
	member, err := r.table.FindOne(ctx, sq.Eq{"auth_subject": subject})
	if err == nil || email == "" {
		return member, err
	}

	return r.table.FindOne(ctx, sq.And{
		sq.Expr("lower(email) = ?", strings.ToLower(email)),
		sq.Eq{"auth_subject": nil},
	})
}

func (r *MemberRepository) LinkSubject(ctx context.Context, memberID, subject string) error {
	query, args, err := psql().
		Update(memberTableName).
		Set("auth_subject", subject).
		Set("updated_at", r.table.now()).
		Where(sq.Eq{"id": memberID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate link subject query: %w", err)
	}

	_, err = r.table.db.Exec(ctx, query, args...)
	return wrapErr(err, "failed to link member subject")
}

func (r *MemberRepository) Members(ctx context.Context, filter types.MemberFilter, page Page) ([]*types.Member, error) {
	where := sq.And{}
	if filter.Role != "" {
		where = append(where, sq.Eq{"role": filter.Role})
	}
	if filter.Active != nil {
		where = append(where, sq.Eq{"is_active": *filter.Active})
	}
	where = search(where, filter.Search, "full_name", "email")

	return r.table.List(ctx, where, page)
}

func (r *MemberRepository) CreateMember(ctx context.Context, member *types.Member) (*types.Member, error) {
	member.Email = strings.ToLower(strings.TrimSpace(member.Email))
	if member.Role == "" {
		member.Role = types.RoleMember
	}
	return r.table.Create(ctx, member)
}

func (r *MemberRepository) UpdateMember(ctx context.Context, id string, changes types.Changes) (*types.Member, error) {
	for i, c := range changes {
		if email, ok := c.Value.(string); ok && c.Column == "email" {
			changes[i].Value = strings.ToLower(strings.TrimSpace(email))
		}
	}
	return r.table.Update(ctx, id, changes)
}

func (r *MemberRepository) SetActive(ctx context.Context, id string, active bool) (*types.Member, error) {
	return r.table.Update(ctx, id, types.Changes{{Column: "is_active", Value: active}})
}

func (r *MemberRepository) DeleteMember(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}
