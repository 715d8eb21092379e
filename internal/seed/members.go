package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"familyhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type MemberRepository interface {
	CreateMember(ctx context.Context, member *types.Member) (*types.Member, error)
}

// SeedAdmin creates the first administrator. The profile is linked to the
// identity provider on its first sign-in with this email. An existing member
// with the same email is not an error.
func SeedAdmin(ctx context.Context, repo MemberRepository, logger *logrus.Logger, email, fullName string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("admin email is required")
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Administrator"
	}

	member, err := repo.CreateMember(ctx, &types.Member{
		Email:    email,
		FullName: strings.TrimSpace(fullName),
		Role:     types.RoleAdmin,
		IsActive: true,
	})
	if errors.Is(err, types.ErrConflict) {
		logger.WithField("email", email).Info("admin already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin %s: %w", email, err)
	}

	logger.WithField("id", member.ID).WithField("email", member.Email).Info("admin created")
	return nil
}
