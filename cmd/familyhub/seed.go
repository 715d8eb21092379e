package main

import (
	"fmt"

	"familyhub/internal/db"
	"familyhub/internal/seed"
	"familyhub/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with default categories and the first administrator",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "admin-email",
			Usage:   "Email of the administrator to create",
			EnvVars: []string{"SEED_ADMIN_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "admin-name",
			Usage:   "Full name of the administrator",
			EnvVars: []string{"SEED_ADMIN_NAME"},
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := c.Context

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := seed.SeedCategories(ctx, store.NewCategoryRepository(pool), logger); err != nil {
			return err
		}

		if email := c.String("admin-email"); email != "" {
			if err := seed.SeedAdmin(ctx, store.NewMemberRepository(pool), logger, email, c.String("admin-name")); err != nil {
				return err
			}
		}

		logger.Info("seed complete")
		return nil
	},
}
