// Command createadmin provisions an admin account from the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"private-scribe-server/internal/config"
	"private-scribe-server/internal/database"
	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/logging"
	"private-scribe-server/internal/repository"
	"private-scribe-server/internal/service"
	"private-scribe-server/internal/session"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	in := bufio.NewReader(os.Stdin)
	req := &domain.RegisterRequest{}
	if req.Email, err = prompt(in, "Email: "); err != nil {
		return err
	}
	if req.FirstName, err = prompt(in, "First name: "); err != nil {
		return err
	}
	if req.LastName, err = prompt(in, "Last name: "); err != nil {
		return err
	}
	if req.Password, err = promptPassword(in); err != nil {
		return err
	}

	if err := validator.New().Struct(req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	auth := service.NewAuthService(repository.NewUnitOfWork(db), session.NewStatelessStore(),
		cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration, logger)

	admin, err := auth.CreateAdmin(context.Background(), req)
	if errors.Is(err, service.ErrEmailTaken) {
		return fmt.Errorf("a user with email %s already exists", req.Email)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Admin %s created with id %s\n", admin.Email, admin.ID)
	return nil
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a terminal and twice for confirmation.
// Piped input is read as a single plain line.
func promptPassword(in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(in, "Password: ")
	}

	read := func(label string) (string, error) {
		fmt.Print(label)
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
