package todo

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type CommentRepo interface {
	ReplaceForTodo(dbc dbctx.Context, todoID int64, rows []domain.Comment) error
	DeleteByTodoID(dbc dbctx.Context, todoID int64) error
	// DeleteScoped removes one comment only when it belongs to todoID.
	DeleteScoped(dbc dbctx.Context, todoID, commentID int64) (int64, error)
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) ReplaceForTodo(dbc dbctx.Context, todoID int64, rows []domain.Comment) error {
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

func (r *commentRepo) DeleteByTodoID(dbc dbctx.Context, todoID int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("todo_id = ?", todoID).Delete(&domain.Comment{}).Error
}

func (r *commentRepo) DeleteScoped(dbc dbctx.Context, todoID, commentID int64) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("id = ? AND todo_id = ?", commentID, todoID).
		Delete(&domain.Comment{})
	return res.RowsAffected, res.Error
}
