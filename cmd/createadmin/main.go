// Command createadmin creates an account with the ADMIN role, the only
// role allowed to change the catalog.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/train-reservation/internal/config"
	"github.com/iliyamo/train-reservation/internal/database"
	"github.com/iliyamo/train-reservation/internal/model"
	"github.com/iliyamo/train-reservation/internal/repository"
	"github.com/iliyamo/train-reservation/internal/utils"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()
	if *email == "" {
		log.Fatal("-email is required")
	}
	if err := utils.CheckPassword(*password); err != nil {
		log.Fatalf("-password: %v", err)
	}

	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cfg.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	u, err := repository.NewUserRepo(db).Create(ctx, *email, *password, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Infof("admin %s created with id %d", u.Email, u.ID)
}
