package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kalenderium/internal/config"
	"kalenderium/internal/logger"
)

func main() {
	schema := flag.String("schema", "database.sql", "path to the schema file")
	seed := flag.Bool("seed", false, "insert the demo user")
	seedEmail := flag.String("seed-email", "demo@kalenderium.local", "email of the demo user")
	seedPassword := flag.String("seed-password", "demo-password", "password of the demo user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer conn.Close(ctx)
	log.Info("connected to database", zap.String("db", cfg.DB.Name))

	if err := applySchema(ctx, conn, *schema, log); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}

	if *seed {
		if err := seedUser(ctx, conn, *seedEmail, *seedPassword); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("demo user ready", zap.String("email", *seedEmail))
	}
}

func applySchema(ctx context.Context, conn *pgx.Conn, path string, log *zap.Logger) error {
	var regclass *string
	if err := conn.QueryRow(ctx, `SELECT to_regclass('public.events')::text`).Scan(&regclass); err != nil {
		return errors.Wrap(err, "checking schema state")
	}
	if regclass != nil {
		log.Info("schema already exists, skipping schema creation")
		return nil
	}

	sql, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if _, err := conn.Exec(ctx, string(sql)); err != nil {
		return errors.Wrap(err, "executing schema")
	}
	log.Info("schema created", zap.String("file", path))
	return nil
}

func seedUser(ctx context.Context, conn *pgx.Conn, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing demo password")
	}
	_, err = conn.Exec(ctx,
		`INSERT INTO users (email, password_hash, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT ON CONSTRAINT users_email_key DO NOTHING`,
		email, hash)
	return errors.Wrap(err, "inserting demo user")
}
