package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/todo-backend/internal/domain/todo"
)

func SeedEmail(tb testing.TB, ctx context.Context, db *gorm.DB, email, displayName string) *todo.EmailAddress {
	tb.Helper()
	row := &todo.EmailAddress{Email: email, DisplayName: displayName}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed email: %v", err)
	}
	return row
}

// SeedTodo inserts a bare todo (no children) owned by ownerID.
func SeedTodo(tb testing.TB, ctx context.Context, db *gorm.DB, ownerID int64, title, description string, createdAt time.Time) *todo.Todo {
	tb.Helper()
	row := &todo.Todo{
		Title:       title,
		Description: description,
		Priority:    todo.PriorityLow,
		Stage:       todo.StageTodo,
		CreatedBy:   "seed",
		CreatedAt:   createdAt.UTC(),
		OwnedID:     ownerID,
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		tb.Fatalf("seed todo: %v", err)
	}
	return row
}

func SeedComment(tb testing.TB, ctx context.Context, db *gorm.DB, todoID int64, text string) *todo.Comment {
	tb.Helper()
	row := &todo.Comment{TodoID: todoID, Text: text, CreatedBy: "seed", CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed comment: %v", err)
	}
	return row
}
