package db

import (
	"context"
	"log"

	"gorm.io/gorm"
)

// Executor runs one raw SQL statement in its own transaction. The
// statement text comes straight from the language model's reply, so the
// executor is deliberately the only component allowed to touch the
// database without going through a store. It never propagates an error:
// the assistant's answer is already decided by the time SQL runs.
type Executor struct {
	db *gorm.DB
}

func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

func (e *Executor) Execute(ctx context.Context, stmt string) bool {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Exec(stmt).Error
	})
	if err != nil {
		log.Printf("[SQL] Error: %v | SQL: %s", err, stmt)
		return false
	}
	return true
}
