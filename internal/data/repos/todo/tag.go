package todo

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type TagRepo interface {
	ReplaceForTodo(dbc dbctx.Context, todoID int64, rows []domain.Tag) error
	DeleteByTodoID(dbc dbctx.Context, todoID int64) error
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

// ReplaceForTodo clears the todo's tags and batch-inserts rows. Duplicate names
// surface as the (todo_id, name) unique violation.
func (r *tagRepo) ReplaceForTodo(dbc dbctx.Context, todoID int64, rows []domain.Tag) error {
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

func (r *tagRepo) DeleteByTodoID(dbc dbctx.Context, todoID int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("todo_id = ?", todoID).Delete(&domain.Tag{}).Error
}
