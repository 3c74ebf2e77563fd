package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	dbfs "github.com/garnizeh/staffboard/db"
	"github.com/garnizeh/staffboard/internal/config"
	"github.com/garnizeh/staffboard/internal/db"
	"github.com/garnizeh/staffboard/internal/repository/sqlite"
	"github.com/garnizeh/staffboard/internal/validation"
	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

// create_staff creates a staff account, or grants staff to an existing one.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	username := flag.String("username", "", "Username of the staff account")
	password := flag.String("password", "", "Password for a new account (ignored when the user exists)")
	firstName := flag.String("first-name", "", "First name for a new account")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "Usage: create_staff -username NAME [-password PASS] [-first-name NAME]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, sqlite.New(database, nil), *username, *password, *firstName); err != nil {
		fmt.Fprintf(os.Stderr, "create_staff: %v\n", err)
		os.Exit(1)
	}
}

type staffStore interface {
	repository.UserRepo
	repository.ProfileRepo
}

func run(ctx context.Context, repo staffStore, username, password, firstName string) error {
	existing, err := repo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	if existing != nil {
		if err := repo.SetStaff(ctx, existing.ID, true); err != nil {
			return err
		}
		if _, _, err := repo.GetOrCreateProfile(ctx, existing.ID, models.Profile{}); err != nil {
			return err
		}
		fmt.Printf("User %q is now staff.\n", username)
		return nil
	}

	if err := validation.ValidateRegistration(validation.Registration{
		Username:  username,
		Password1: password,
		Password2: password,
	}); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	id, err := repo.CreateUserWithProfile(ctx, &models.User{
		Username:     username,
		FirstName:    firstName,
		IsStaff:      true,
		PasswordHash: string(hash),
	}, models.Profile{})
	if err != nil {
		return err
	}

	fmt.Printf("Staff user %q created (id %d).\n", username, id)
	return nil
}
