package todo

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type ActivityRepo interface {
	Create(dbc dbctx.Context, row *domain.Activity) error
	ListByTodoID(dbc dbctx.Context, todoID int64) ([]*domain.Activity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Create(dbc dbctx.Context, row *domain.Activity) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *activityRepo) ListByTodoID(dbc dbctx.Context, todoID int64) ([]*domain.Activity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Activity{}
	if err := t.WithContext(dbc.Ctx).
		Where("todo_id = ?", todoID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
