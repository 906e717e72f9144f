// Command seed loads roles, areas and demo accounts into the database.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"cajachica/internal/config"
	"cajachica/internal/database"
	"cajachica/internal/middleware"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load("configs/.env")

	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	db, err := database.NewConnection(cfg.Database.DSN(), cfg.Database.LogMode)
	if err != nil {
		color.Red("database connection failed: %v", err)
		os.Exit(1)
	}
	if err := database.Migrate(db, nil); err != nil {
		color.Red("migration failed: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	color.Cyan("Seeding %s@%s\n", cfg.Database.Name, cfg.Database.Host)
	sum, err := newSeeder(db).Run(ctx)
	if err != nil {
		color.Red("seed failed: %v", err)
		os.Exit(1)
	}
	color.Green("roles: %d, areas created: %d, users created: %d", sum.Roles, sum.AreasCreated, sum.UsersCreated)

	// Development tokens are only printed when no real secret is configured
	if cfg.JWT.Secret != "" {
		return
	}
	tokens := middleware.NewTokenManager(middleware.DevSecret, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	color.Yellow("\nDevelopment tokens (Authorization: Bearer ...)")
	for _, u := range sum.Users {
		token, _, err := tokens.Generate(u.ID, u.Role)
		if err != nil {
			color.Red("%s: %v", u.Email, err)
			continue
		}
		color.White("%-24s %-20s %s", u.Email, u.Role, token)
	}
}
