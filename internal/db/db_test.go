package db

import (
	"testing"

	"bitbetty/internal/config"
	"bitbetty/internal/models"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	conn, err := Open(config.DBConfig{Driver: "sqlite", DSN: "file:db_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer Close(conn)

	if err := Ping(conn); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := SetTimezone(conn, "UTC"); err != nil {
		t.Fatalf("timezone should be a no-op on sqlite: %v", err)
	}
	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !conn.Gorm.Migrator().HasTable(&models.Guess{}) {
		t.Fatalf("guesses table missing")
	}
	if !conn.Gorm.Migrator().HasIndex(&models.Guess{}, "ux_guesses_open_username") {
		t.Fatalf("open username index missing")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DBConfig{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error")
	}
}
