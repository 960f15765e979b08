package todo

import (
	"strings"

	"gorm.io/gorm"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type EmailAddressRepo interface {
	Create(dbc dbctx.Context, row *domain.EmailAddress) error
	GetByID(dbc dbctx.Context, id int64) (*domain.EmailAddress, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(dbc dbctx.Context, email string) (*domain.EmailAddress, error)
	List(dbc dbctx.Context, search string) ([]*domain.EmailAddress, error)
}

type emailAddressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmailAddressRepo(db *gorm.DB, baseLog *logger.Logger) EmailAddressRepo {
	return &emailAddressRepo{db: db, log: baseLog.With("repo", "EmailAddressRepo")}
}

// Postgres does not advance a serial sequence past explicitly inserted ids.
const advanceEmailSequenceSQL = `SELECT setval(pg_get_serial_sequence('email_address', 'id'), (SELECT MAX(id) FROM email_address))`

// Create inserts row. A caller-chosen id moves the Postgres id sequence past
// it in the same transaction, so later store-assigned ids cannot collide.
func (r *emailAddressRepo) Create(dbc dbctx.Context, row *domain.EmailAddress) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	explicitID := row.ID != 0
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return err
	}
	if explicitID && t.Dialector.Name() == "postgres" {
		return t.WithContext(dbc.Ctx).Exec(advanceEmailSequenceSQL).Error
	}
	return nil
}

func (r *emailAddressRepo) GetByID(dbc dbctx.Context, id int64) (*domain.EmailAddress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*domain.EmailAddress
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *emailAddressRepo) GetByEmail(dbc dbctx.Context, email string) (*domain.EmailAddress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var rows []*domain.EmailAddress
	if err := t.WithContext(dbc.Ctx).
		Where("LOWER(email) = ?", email).
		Order("id ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// List returns every address ordered by id, filtered on email or display name
// when search is non-empty.
func (r *emailAddressRepo) List(dbc dbctx.Context, search string) ([]*domain.EmailAddress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&domain.EmailAddress{})
	if s := strings.TrimSpace(search); s != "" {
		pattern := likePattern(s)
		q = q.Where(`LOWER(email) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	out := []*domain.EmailAddress{}
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
