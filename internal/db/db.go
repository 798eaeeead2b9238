package db

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/gratefultolord/wisherbot/internal/config"
)

type DB struct {
	Conn *sqlx.DB
}

func New(cfg *config.Config) (*DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

		conn, err = sqlx.Connect("postgres", dsn)
	case "sqlite":
		conn, err = sqlx.Connect("sqlite", cfg.DBFile)
	default:
		return nil, fmt.Errorf("db.New: unknown driver %q", cfg.DBDriver)
	}

	if err != nil {
		return nil, fmt.Errorf("db.New: cannot connect to database: %w", err)
	}

	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(60 * time.Minute)

	return &DB{Conn: conn}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

func RunMigrations(conn *sqlx.DB, scriptPaths ...string) error {
	for _, path := range scriptPaths {
		script, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("db.RunMigrations: cannot read %s: %w", path, err)
		}

		if _, err := conn.Exec(string(script)); err != nil {
			return fmt.Errorf("db.RunMigrations: cannot apply %s: %w", path, err)
		}
	}

	return nil
}
