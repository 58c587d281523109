package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type demoUser struct {
	Name     string
	Email    string
	Age      int
	Active   bool
	Nickname *string
}

func nick(s string) *string { return &s }

var demoUsers = []demoUser{
	{Name: "Ada Lovelace", Email: "ada@example.com", Age: 36, Active: true, Nickname: nick("Countess")},
	{Name: "Alan Turing", Email: "alan@example.com", Age: 41, Active: true},
	{Name: "Grace Hopper", Email: "grace@example.com", Age: 85, Active: true, Nickname: nick("Amazing Grace")},
	{Name: "Bob Tables", Email: "bob@example.com", Age: 25, Active: false},
	{Name: "Edsger Dijkstra", Email: "edsger@example.com", Age: 72, Active: false},
}

// seedUsers inserts the demo users. Idempotent: does nothing when the users
// table already has rows.
func seedUsers(ctx context.Context, writeDB *sql.DB, driver string) (int, error) {
	var existing int
	if err := writeDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&existing); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := writeDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insert := sqlx.Rebind(sqlx.BindType(driver),
		"INSERT INTO users (name, email, age, active, nickname) VALUES (?, ?, ?, ?, ?)")
	for _, u := range demoUsers {
		if _, err := tx.ExecContext(ctx, insert, u.Name, u.Email, u.Age, u.Active, u.Nickname); err != nil {
			return 0, fmt.Errorf("insert %s: %w", u.Email, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(demoUsers), nil
}
