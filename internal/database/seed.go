package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdminEmail is the login of the development administrator.
const SeedAdminEmail = "admin@featherpress.local"

// Seed populates the database with initial development data. It creates
// a default admin account in the Admin group if no users exist. The admin
// can enable 2FA from /auth/2fa/setup after signing in.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, hashed_password, full_name, group_id, totp_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`, "admin", SeedAdminEmail, string(hash), "Admin", 1, false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"password", "admin",
	)

	return nil
}
