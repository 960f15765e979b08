package services

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/todo-backend/internal/cache"
	todorepo "github.com/yungbote/todo-backend/internal/data/repos/todo"
	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/ctxutil"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type ListTodosParams struct {
	PageNumber int
	PageSize   int
	SortBy     string
	Descending bool
	Search     string
}

type TodoService interface {
	GetTodo(ctx context.Context, id int64) (*todo.Todo, error)
	ListTodos(ctx context.Context, p ListTodosParams) ([]*todo.Todo, int64, error)
	CreateTodo(ctx context.Context, in domainagg.TodoInput) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in domainagg.TodoInput) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
	DeleteComment(ctx context.Context, todoID, commentID int64) error
	ListActivity(ctx context.Context, todoID int64) ([]*todo.Activity, error)
}

type todoService struct {
	log        *logger.Logger
	todos      todorepo.TodoRepo
	activities todorepo.ActivityRepo
	aggregate  domainagg.TodoAggregate
	cache      cache.Cache
	sf         singleflight.Group
}

func NewTodoService(
	log *logger.Logger,
	todos todorepo.TodoRepo,
	activities todorepo.ActivityRepo,
	aggregate domainagg.TodoAggregate,
	c cache.Cache,
) TodoService {
	if c == nil {
		c = cache.Noop{}
	}
	return &todoService{
		log:        log.With("service", "TodoService"),
		todos:      todos,
		activities: activities,
		aggregate:  aggregate,
		cache:      c,
	}
}

func todoGenKey(id int64) string {
	return "todo:gen:" + strconv.FormatInt(id, 10)
}

func todoCacheKey(id, gen int64) string {
	return "todo:" + strconv.FormatInt(id, 10) + ":" + strconv.FormatInt(gen, 10)
}

// GetTodo reads through the cache. Entries are keyed by the todo's write
// generation as read before the load, so a load racing a write can only fill
// a generation no later reader asks for. Concurrent misses for the same
// generation share one database load.
func (s *todoService) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	gen, err := s.cache.Generation(ctx, todoGenKey(id))
	if err != nil {
		s.log.Warn("cache generation read failed, bypassing cache", "todo_id", id, "error", err)
		return s.loadTodo(ctx, id)
	}
	key := todoCacheKey(id, gen)

	var cached todo.Todo
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache read failed, falling back to db", "todo_id", id, "error", err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := s.sf.Do(key, func() (any, error) {
		return s.loadTodo(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	row := val.(*todo.Todo)
	if err := s.cache.Set(ctx, key, row); err != nil {
		s.log.Warn("cache write failed", "todo_id", id, "error", err)
	}
	return row, nil
}

func (s *todoService) loadTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	row, err := s.todos.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "Todo.Get", err)
	}
	if row == nil {
		return nil, domainagg.NotFound("Todo.Get", "todo", id)
	}
	return row, nil
}

func (s *todoService) ListTodos(ctx context.Context, p ListTodosParams) ([]*todo.Todo, int64, error) {
	const op = "Todo.List"
	if p.PageNumber < 1 {
		return nil, 0, domainagg.FieldError(op, "pageNumber", "must be at least 1")
	}
	if p.PageNumber > todorepo.MaxPageNumber {
		return nil, 0, domainagg.FieldError(op, "pageNumber", fmt.Sprintf("must be at most %d", todorepo.MaxPageNumber))
	}
	if p.PageSize < 1 {
		return nil, 0, domainagg.FieldError(op, "pageSize", "must be at least 1")
	}
	if p.PageSize > todorepo.MaxPageSize {
		p.PageSize = todorepo.MaxPageSize
	}
	col, err := todorepo.ParseSortField(p.SortBy)
	if err != nil {
		return nil, 0, domainagg.FieldError(op, "sortBy", err.Error())
	}
	rows, total, err := s.todos.GetPage(dbctx.Context{Ctx: ctx}, todorepo.PageQuery{
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		SortColumn: col,
		Descending: p.Descending,
		Search:     p.Search,
	})
	if err != nil {
		return nil, 0, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return rows, total, nil
}

func (s *todoService) CreateTodo(ctx context.Context, in domainagg.TodoInput) (*todo.Todo, error) {
	in.Subject = ctxutil.Subject(ctx)
	row, err := s.aggregate.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("todo created", "todo_id", row.ID, "subject", in.Subject)
	return row, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id int64, in domainagg.TodoInput) (*todo.Todo, error) {
	in.Subject = ctxutil.Subject(ctx)
	row, err := s.aggregate.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.log.Info("todo updated", "todo_id", id, "subject", in.Subject)
	return row, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id int64) error {
	subject := ctxutil.Subject(ctx)
	if err := s.aggregate.Delete(ctx, domainagg.DeleteTodoInput{TodoID: id, Subject: subject}); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.Info("todo deleted", "todo_id", id, "subject", subject)
	return nil
}

func (s *todoService) DeleteComment(ctx context.Context, todoID, commentID int64) error {
	err := s.aggregate.DeleteComment(ctx, domainagg.DeleteCommentInput{
		TodoID:    todoID,
		CommentID: commentID,
		Subject:   ctxutil.Subject(ctx),
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, todoID)
	return nil
}

// ListActivity returns the audit trail of an existing todo, oldest first.
func (s *todoService) ListActivity(ctx context.Context, todoID int64) ([]*todo.Activity, error) {
	const op = "Todo.Activity"
	dbc := dbctx.Context{Ctx: ctx}
	root, err := s.todos.GetRootByID(dbc, todoID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if root == nil {
		return nil, domainagg.NotFound(op, "todo", todoID)
	}
	rows, err := s.activities.ListByTodoID(dbc, todoID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return rows, nil
}

// invalidate runs after commit. Bumping the generation retires every entry
// filled before it, including fills still in flight.
func (s *todoService) invalidate(ctx context.Context, id int64) {
	gen, err := s.cache.Bump(ctx, todoGenKey(id))
	if err != nil {
		s.log.Warn("cache invalidation failed", "todo_id", id, "error", err)
		return
	}
	if err := s.cache.Delete(ctx, todoCacheKey(id, gen-1)); err != nil {
		s.log.Warn("cache cleanup failed", "todo_id", id, "error", err)
	}
}
