// Command useradmin creates user accounts directly in the database,
// bypassing the HTTP API. Intended for bootstrapping the first admin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/finmetrics/portfolio-api/internal/dbx"
	"github.com/finmetrics/portfolio-api/internal/flagx"
	"github.com/finmetrics/portfolio-api/internal/server/auth"
	"github.com/finmetrics/portfolio-api/internal/server/config"
	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/repomanager"
)

func main() {
	// Config flags like -d (DSN) are parsed by config.LoadConfig; only
	// this tool's own flags are picked out here.
	fs := flag.NewFlagSet("useradmin", flag.ExitOnError)
	username := fs.String("u", "", "username of the account to create")
	email := fs.String("e", "", "email of the account to create")
	role := fs.String("r", models.RoleAdmin, "role to assign (admin or viewer)")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-u", "-e", "-r"}))

	if *username == "" || *email == "" {
		fs.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *username, *email, *role); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	var raw []byte
	var err error
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err = term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
	} else {
		line, readErr := bufio.NewReader(os.Stdin).ReadString('\n')
		raw, err = []byte(strings.TrimRight(line, "\n")), readErr
	}
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

func run(ctx context.Context, username, email, role string) error {
	cfg := config.LoadConfig()

	password, err := readPassword()
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := rm.Users(tx)

		created, err := repo.Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
		if err != nil {
			return err
		}
		return repo.AssignRole(ctx, created.ID, role)
	})
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Printf("user %q created with role %q\n", username, role)
	return nil
}
