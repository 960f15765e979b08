package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/todo-backend/internal/domain/todo"
)

// AutoMigrateAll creates or updates every table. Order matters: the owner
// registry precedes todo, and todo precedes its children.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&todo.EmailAddress{},
		&todo.Todo{},
		&todo.Tag{},
		&todo.Comment{},
		&todo.TodoAssignee{},
		&todo.Activity{},
	)
}
