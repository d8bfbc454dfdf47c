// Package main creates liftlog login users.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/config"
	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	username := flag.String("username", "", "login username")
	flag.Parse()

	password := os.Getenv("LIFTLOG_NEW_USER_PASS")
	if *username == "" || password == "" {
		log.Fatalln("username and password are required: use -username and LIFTLOG_NEW_USER_PASS")
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		ConnString: cfg.PostgresDSN(os.Getenv("LIFTLOG_POSTGRES_PASS")),
		MaxConns:   1,
	})
	if err != nil {
		log.Fatalf("db pool: %s", err)
	}
	defer dbPool.Close()

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %s", err)
	}

	user, err := auth.NewUsersRepo(dbPool).Create(ctx, *username, passwordHash)
	if err != nil {
		log.Fatalf("create user %s: %s", *username, err)
	}
	log.Infof("user %s created, id: %s", user.Username, user.ID)
}
