package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/term"

	"github.com/vncsmyrnk/patients/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/patients/internal/adapters/security/password"
	"github.com/vncsmyrnk/patients/internal/config"
	"github.com/vncsmyrnk/patients/internal/core/ports"
	"github.com/vncsmyrnk/patients/internal/core/services"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

func main() {
	var username, email, secret string

	flag.StringVar(&username, "username", "", "login name of the new user")
	flag.StringVar(&email, "email", "", "optional email address")
	flag.StringVar(&secret, "password", "", "password; prompted for when omitted")
	flag.Parse()

	if username == "" {
		log.Fatal("-username is required")
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatal(err)
	}

	secret, err = promptPassword(secret, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	hasher, err := password.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userService := services.NewUserService(postgres.NewUserRepository(db), hasher)
	user, err := userService.Provision(ctx, ports.ProvisionUserInput{
		Username: username,
		Email:    email,
		Password: secret,
	})
	if err != nil {
		log.Fatalf("Error creating user: %v", err)
	}

	fmt.Printf("User %q created with id %d.\n", user.Username, user.ID)
}

// promptPassword returns given unchanged, or reads a password from the
// terminal without echo when it is empty.
func promptPassword(given string, w io.Writer) (string, error) {
	if given != "" {
		return given, nil
	}

	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(pw) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(pw), nil
}
