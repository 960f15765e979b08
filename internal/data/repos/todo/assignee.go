package todo

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type AssigneeRepo interface {
	ReplaceForTodo(dbc dbctx.Context, todoID int64, rows []domain.TodoAssignee) error
	DeleteByTodoID(dbc dbctx.Context, todoID int64) error
}

type assigneeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssigneeRepo(db *gorm.DB, baseLog *logger.Logger) AssigneeRepo {
	return &assigneeRepo{db: db, log: baseLog.With("repo", "AssigneeRepo")}
}

func (r *assigneeRepo) ReplaceForTodo(dbc dbctx.Context, todoID int64, rows []domain.TodoAssignee) error {
	if err := r.DeleteByTodoID(dbc, todoID); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	for i := range rows {
		rows[i].ID = 0
		rows[i].TodoID = todoID
	}
	return t.WithContext(dbc.Ctx).Create(&rows).Error
}

func (r *assigneeRepo) DeleteByTodoID(dbc dbctx.Context, todoID int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("todo_id = ?", todoID).Delete(&domain.TodoAssignee{}).Error
}
