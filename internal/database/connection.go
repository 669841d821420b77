package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlx connection and is passed to repositories explicitly.
type DB struct {
	*sqlx.DB
}

// Connect establishes a connection to the database. The driver is chosen
// by DB_TYPE ("sqlite" by default, "postgres" with DATABASE_URL set).
func Connect() (*DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var conn *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		conn, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
	case "sqlite":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}

		dbPath := filepath.Join(dataDir, "lingobot.db")
		conn, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}

		// Enable foreign keys
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}

	db := &DB{DB: conn}
	if err := db.initializeSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

// ConnectSQLiteInMemory opens a throwaway in-memory database for tests.
func ConnectSQLiteInMemory() (*DB, error) {
	conn, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{DB: conn}
	if err := db.initializeSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// isPostgres reports whether the underlying driver is PostgreSQL.
// SQL that differs between dialects (NOW(), RETURNING) branches on this.
func (db *DB) isPostgres() bool {
	return db.DriverName() == "postgres"
}

// initializeSchema creates necessary tables if they don't exist
func (db *DB) initializeSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.isPostgres() {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			is_admin BOOLEAN DEFAULT false,
			notification_enabled BOOLEAN DEFAULT true,
			notification_hour INTEGER DEFAULT 9,
			words_per_day INTEGER DEFAULT 10,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id ` + serial + `,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS words (
			id ` + serial + `,
			word TEXT NOT NULL,
			translation TEXT NOT NULL,
			context TEXT DEFAULT '',
			examples TEXT DEFAULT '',
			topic_id BIGINT NOT NULL,
			difficulty INTEGER DEFAULT 1,
			pronunciation TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (topic_id) REFERENCES topics(id),
			UNIQUE(word, topic_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_progress (
			id ` + serial + `,
			user_id BIGINT NOT NULL,
			word_id BIGINT NOT NULL,
			interval_days INTEGER DEFAULT 0,
			ease_factor REAL DEFAULT 2.5,
			repetitions INTEGER DEFAULT 0,
			last_quality INTEGER DEFAULT 0,
			status TEXT DEFAULT 'new',
			last_review_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			next_review_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(telegram_id),
			FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE,
			UNIQUE(user_id, word_id)
		)`,
		`CREATE TABLE IF NOT EXISTS credentials (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			provider TEXT NOT NULL,
			api_key TEXT NOT NULL,
			label TEXT DEFAULT '',
			enabled BOOLEAN DEFAULT true,
			last_failure_at TIMESTAMP,
			disabled_until TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(telegram_id)
		)`,
		`CREATE TABLE IF NOT EXISTS practice_results (
			id ` + serial + `,
			user_id BIGINT NOT NULL,
			practice_type TEXT NOT NULL,
			total_words INTEGER DEFAULT 0,
			correct_words INTEGER DEFAULT 0,
			duration INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(telegram_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
