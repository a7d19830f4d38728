package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/ecoexchange/recycle/internal/auth"
	"github.com/ecoexchange/recycle/internal/config"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/model"
	"github.com/ecoexchange/recycle/internal/store"
)

const usage = "Usage: recycle-admin <init|role|reset-password> [flags] [args]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(cfg, os.Args[2:])
	case "role":
		cmdRole(cfg, os.Args[2:])
	case "reset-password":
		cmdResetPassword(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}
}

func cmdInit(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dsn := fs.String("db", cfg.Database.DSN, "database path or DSN")
	email := fs.String("email", cfg.App.AdminEmail, "admin email address")
	fs.Parse(args)

	database, dialect := openDatabase(cfg.Database.Driver, *dsn)
	defer database.Close()

	users := store.NewUserRepository(database, dialect)
	ctx := context.Background()
	n, err := users.Count(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	if n > 0 {
		fatalf("database %s already has %d users", *dsn, n)
	}

	address, err := model.NormalizeEmail(*email)
	if err != nil {
		fatalf("admin email: %v", err)
	}
	password := newPassword()
	hash, err := auth.HashPassword(password)
	if err != nil {
		fatalf("%v", err)
	}
	if _, err := users.Create(ctx, address, "Administrator", hash, model.RoleAdmin); err != nil {
		fatalf("creating admin user: %v", err)
	}

	fmt.Printf("Database ready: %s\n", *dsn)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", address)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
}

func cmdRole(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("role", flag.ExitOnError)
	dsn := fs.String("db", cfg.Database.DSN, "database path or DSN")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fatalf("usage: recycle-admin role [-db dsn] <email> <admin|moderator|user>")
	}

	database, dialect := openDatabase(cfg.Database.Driver, *dsn)
	defer database.Close()

	users := store.NewUserRepository(database, dialect)
	ctx := context.Background()
	user := lookupUser(ctx, users, fs.Arg(0))
	if err := users.UpdateRole(ctx, user.ID, fs.Arg(1)); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%s is now %s\n", user.Email, fs.Arg(1))
}

func cmdResetPassword(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	dsn := fs.String("db", cfg.Database.DSN, "database path or DSN")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatalf("usage: recycle-admin reset-password [-db dsn] <email>")
	}

	database, dialect := openDatabase(cfg.Database.Driver, *dsn)
	defer database.Close()

	users := store.NewUserRepository(database, dialect)
	ctx := context.Background()
	user := lookupUser(ctx, users, fs.Arg(0))

	password := newPassword()
	hash, err := auth.HashPassword(password)
	if err != nil {
		fatalf("%v", err)
	}
	if err := users.UpdatePassword(ctx, user.ID, hash); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("New password for %s: %s\n", user.Email, password)
}

func openDatabase(driver, dsn string) (*sql.DB, db.Dialect) {
	database, err := db.Open(driver, dsn)
	if err != nil {
		fatalf("%v", err)
	}
	dialect := db.DialectFor(driver)
	if err := db.EnsureSchema(database, dialect); err != nil {
		database.Close()
		fatalf("ensuring schema: %v", err)
	}
	return database, dialect
}

func lookupUser(ctx context.Context, users *store.UserRepository, email string) *model.User {
	address, err := model.NormalizeEmail(email)
	if err != nil {
		fatalf("%v", err)
	}
	user, err := users.GetByEmail(ctx, address)
	if err != nil {
		fatalf("%s: %v", address, err)
	}
	return user
}

func newPassword() string {
	password, err := auth.GeneratePassword(16)
	if err != nil {
		fatalf("%v", err)
	}
	return password
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
