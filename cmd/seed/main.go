package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/taskflow-app/taskflow/config"
	"github.com/taskflow-app/taskflow/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@taskflow.local"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	tasks := []struct {
		title       string
		description string
		status      string
		priority    string
		dueInDays   int
	}{
		{"Buy groceries", "Milk, eggs, bread", "Todo", "Medium", 1},
		{"Finish quarterly report", "Numbers due to finance", "In Progress", "High", 3},
		{"Book dentist appointment", "", "Todo", "Low", 14},
		{"Review pull requests", "Backend repo", "Completed", "High", 0},
		{"Plan weekend trip", "Check train schedules", "Todo", "Low", 7},
	}

	for _, t := range tasks {
		var due *time.Time
		if t.dueInDays > 0 {
			d := time.Now().AddDate(0, 0, t.dueInDays)
			due = &d
		}
		if _, err := db.Exec(`
			INSERT INTO tasks (title, description, status, priority, due_date, user_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.title, t.description, t.status, t.priority, due, id); err != nil {
			log.Fatalf("failed to seed task %q: %v", t.title, err)
		}
	}
	fmt.Printf("seeded %d tasks for %s\n", len(tasks), email)
}
