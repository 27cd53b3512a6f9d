// Seeds the initial admin user. Run once after the first deploy:
//
//	go run ./cmd/seedadmin -username admin -password <password>
package main

import (
	"flag"
	"os"

	"assettrack/internal/config"
	"assettrack/internal/infra"
	"assettrack/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Administrator", "display name")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}
	if len(*password) < 8 {
		log.Fatal().Msg("password must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var count int64
	db.Model(&model.User{}).Where("username = ?", *username).Count(&count)
	if count > 0 {
		log.Info().Str("username", *username).Msg("user already exists, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("password hashing failed")
	}

	user := &model.User{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(user).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to create admin user")
	}
	log.Info().Str("username", *username).Msg("admin user created")
}
