package main

import (
	"familyhub/internal/db"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply or roll back database migrations",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply pending migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Number of migrations to apply, all when 0",
				},
			},
			Action: func(c *cli.Context) error {
				return runMigrations(c, c.Int("steps"))
			},
		},
		{
			Name:  "down",
			Usage: "Roll back migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Number of migrations to roll back",
					Value: 1,
				},
			},
			Action: func(c *cli.Context) error {
				steps := c.Int("steps")
				if steps <= 0 {
					steps = 1
				}
				return runMigrations(c, -steps)
			},
		},
	},
}

func runMigrations(c *cli.Context, steps int) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	return db.Migrate(config, newLogger(config), steps)
}
