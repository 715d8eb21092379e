package seed

import (
	"context"
	"fmt"

	"familyhub/internal/utils"
	"familyhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type CategoryRepository interface {
	UpsertCategory(ctx context.Context, category *types.DocumentCategory) (*types.DocumentCategory, error)
}

// defaultCategories keys on the category name. IDs only matter for new rows;
// an existing category keeps its ID and gets the description below.
//
// To generate new IDs: `go run ./cmd/familyhub nanoid`
var defaultCategories = []types.DocumentCategory{
	{
		ID:          "Vd0cJx3nq8tEw1bRk6LZyPmA5sHgF2Uo",
		Name:        "Meeting Minutes",
		Description: utils.StringPtr("Minutes and agendas of family meetings"),
	},
	{
		ID:          "q7KfM2wYc9RbT4nXeJ1LsD8aPvG3hZ0i",
		Name:        "Financial Reports",
		Description: utils.StringPtr("Treasurer reports, budgets and bank statements"),
	},
	{
		ID:          "Bx5uN8oE2kWqH6jC1tRfY9mVzA3dLg7s",
		Name:        "Bylaws",
		Description: utils.StringPtr("Constitution, bylaws and internal rules"),
	},
	{
		ID:          "Hn4pS7cQ1vXyE9bK2mTzW6rJ8uLa3fGd",
		Name:        "Legal",
		Description: utils.StringPtr("Deeds, certificates and other legal papers"),
	},
	{
		ID:          "Zr2tG5yU8iO1pA4sD7fH0jK3lQ6wE9xC",
		Name:        "Photos",
		Description: utils.StringPtr("Scanned photos and albums"),
	},
}

// SeedCategories inserts the default document categories and refreshes the
// descriptions of those that already exist. Categories created by members are
// left alone.
func SeedCategories(ctx context.Context, repo CategoryRepository, logger *logrus.Logger) error {
	logger.WithField("count", len(defaultCategories)).Info("syncing document categories")

	for _, c := range defaultCategories {
		category := c
		saved, err := repo.UpsertCategory(ctx, &category)
		if err != nil {
			return fmt.Errorf("failed to upsert category %q: %w", c.Name, err)
		}
		logger.WithField("id", saved.ID).WithField("name", saved.Name).Debug("category upserted")
	}

	return nil
}
