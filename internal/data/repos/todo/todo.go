package todo

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type TodoRepo interface {
	Create(dbc dbctx.Context, row *domain.Todo) error
	GetByID(dbc dbctx.Context, id int64) (*domain.Todo, error)
	GetRootByID(dbc dbctx.Context, id int64) (*domain.Todo, error)
	GetPage(dbc dbctx.Context, q PageQuery) ([]*domain.Todo, int64, error)
	ReplaceScalars(dbc dbctx.Context, row *domain.Todo) error
	DeleteByID(dbc dbctx.Context, id int64) (int64, error)
}

type todoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTodoRepo(db *gorm.DB, baseLog *logger.Logger) TodoRepo {
	return &todoRepo{db: db, log: baseLog.With("repo", "TodoRepo")}
}

// Create inserts the root row only; children go through their own repos.
func (r *todoRepo) Create(dbc dbctx.Context, row *domain.Todo) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(row).Error
}

// GetByID loads the full aggregate. A missing row yields (nil, nil).
func (r *todoRepo) GetByID(dbc dbctx.Context, id int64) (*domain.Todo, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*domain.Todo
	if err := hydrate(t.WithContext(dbc.Ctx)).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *todoRepo) GetRootByID(dbc dbctx.Context, id int64) (*domain.Todo, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*domain.Todo
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *todoRepo) GetPage(dbc dbctx.Context, q PageQuery) ([]*domain.Todo, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.SortColumn == "" {
		q.SortColumn = sortColumns["createdat"]
	}

	base := t.WithContext(dbc.Ctx).Model(&domain.Todo{})
	if q.Search != "" {
		pattern := likePattern(q.Search)
		base = base.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []*domain.Todo{}
	if total == 0 {
		return out, 0, nil
	}
	err := hydrate(base.Session(&gorm.Session{})).
		Order(q.orderColumn()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.offset()).
		Limit(q.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ReplaceScalars overwrites every scalar column, zero values included.
func (r *todoRepo) ReplaceScalars(dbc dbctx.Context, row *domain.Todo) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row.UpdatedAt = time.Now().UTC()
	res := t.WithContext(dbc.Ctx).
		Model(&domain.Todo{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"title":       row.Title,
			"description": row.Description,
			"completed":   row.Completed,
			"deadline":    row.Deadline,
			"priority":    row.Priority,
			"stage":       row.Stage,
			"created_by":  row.CreatedBy,
			"created_at":  row.CreatedAt,
			"owned_id":    row.OwnedID,
			"updated_at":  row.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *todoRepo) DeleteByID(dbc dbctx.Context, id int64) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&domain.Todo{})
	return res.RowsAffected, res.Error
}

func hydrate(q *gorm.DB) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }
	return q.
		Preload("Owned").
		Preload("Tags", byID).
		Preload("Comments", byID).
		Preload("AssignedTo", byID)
}
