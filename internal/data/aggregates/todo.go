package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	todorepo "github.com/yungbote/todo-backend/internal/data/repos/todo"
	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
)

type TodoAggregateDeps struct {
	Base       BaseDeps
	Todos      todorepo.TodoRepo
	Tags       todorepo.TagRepo
	Comments   todorepo.CommentRepo
	Assignees  todorepo.AssigneeRepo
	Emails     todorepo.EmailAddressRepo
	Activities todorepo.ActivityRepo
}

type todoAggregate struct {
	deps TodoAggregateDeps
	now  func() time.Time
}

func NewTodoAggregate(deps TodoAggregateDeps) domainagg.TodoAggregate {
	return &todoAggregate{deps: deps, now: time.Now}
}

func (a *todoAggregate) Contract() domainagg.Contract {
	return domainagg.TodoAggregateContract
}

// Create inserts a new Todo with its children. A non-zero deadline must not
// already be in the past.
func (a *todoAggregate) Create(ctx context.Context, in domainagg.TodoInput) (*todo.Todo, error) {
	const op = "Todo.Create"
	now := normalizeTime(a.now())

	var out *todo.Todo
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		draft, err := buildDraft(op, in, now, true)
		if err != nil {
			return err
		}
		if !draft.root.Deadline.IsZero() && draft.root.Deadline.Before(now) {
			return domainagg.FieldError(op, "deadline", "deadline is in the past")
		}
		owner, err := resolveOwner(dbc, a.deps.Emails, op, in.Owned)
		if err != nil {
			return err
		}
		draft.root.OwnedID = owner.ID

		if err := a.deps.Todos.Create(dbc, draft.root); err != nil {
			return err
		}
		if err := a.replaceChildren(dbc, draft.root.ID, draft); err != nil {
			return err
		}
		if err := a.recordActivity(dbc, draft.root.ID, todo.ActivityCreate, in.Subject, map[string]any{
			"title":    draft.root.Title,
			"owned_id": owner.ID,
		}); err != nil {
			return err
		}
		out, err = a.deps.Todos.GetByID(dbc, draft.root.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every scalar, re-resolves the owner and replaces all three
// child collections. Applying the same input twice leaves the same state.
func (a *todoAggregate) Update(ctx context.Context, id int64, in domainagg.TodoInput) (*todo.Todo, error) {
	const op = "Todo.Update"
	now := normalizeTime(a.now())

	var out *todo.Todo
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Todos.GetRootByID(dbc, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domainagg.NotFound(op, "todo", id)
		}
		draft, err := buildDraft(op, in, now, false)
		if err != nil {
			return err
		}
		owner, err := resolveOwner(dbc, a.deps.Emails, op, in.Owned)
		if err != nil {
			return err
		}
		draft.root.ID = id
		draft.root.OwnedID = owner.ID

		if err := a.deps.Todos.ReplaceScalars(dbc, draft.root); err != nil {
			return err
		}
		if err := a.replaceChildren(dbc, id, draft); err != nil {
			return err
		}
		if err := a.recordActivity(dbc, id, todo.ActivityUpdate, in.Subject, map[string]any{
			"title":     draft.root.Title,
			"owned_id":  owner.ID,
			"tags":      len(draft.tags),
			"comments":  len(draft.comments),
			"assignees": len(draft.assignees),
		}); err != nil {
			return err
		}
		out, err = a.deps.Todos.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the Todo and its children. A missing id changes nothing.
func (a *todoAggregate) Delete(ctx context.Context, in domainagg.DeleteTodoInput) error {
	const op = "Todo.Delete"
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Todos.GetRootByID(dbc, in.TodoID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domainagg.NotFound(op, "todo", in.TodoID)
		}
		if err := a.deps.Tags.DeleteByTodoID(dbc, in.TodoID); err != nil {
			return err
		}
		if err := a.deps.Comments.DeleteByTodoID(dbc, in.TodoID); err != nil {
			return err
		}
		if err := a.deps.Assignees.DeleteByTodoID(dbc, in.TodoID); err != nil {
			return err
		}
		n, err := a.deps.Todos.DeleteByID(dbc, in.TodoID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NotFound(op, "todo", in.TodoID)
		}
		return a.recordActivity(dbc, in.TodoID, todo.ActivityDelete, in.Subject, map[string]any{
			"title": existing.Title,
		})
	})
}

// DeleteComment removes one comment, but only when it belongs to the given Todo.
func (a *todoAggregate) DeleteComment(ctx context.Context, in domainagg.DeleteCommentInput) error {
	const op = "Todo.DeleteComment"
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Todos.GetRootByID(dbc, in.TodoID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domainagg.NotFound(op, "todo", in.TodoID)
		}
		n, err := a.deps.Comments.DeleteScoped(dbc, in.TodoID, in.CommentID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NotFound(op, "comment", in.CommentID)
		}
		return a.recordActivity(dbc, in.TodoID, todo.ActivityDeleteComment, in.Subject, map[string]any{
			"comment_id": in.CommentID,
		})
	})
}

func (a *todoAggregate) replaceChildren(dbc dbctx.Context, todoID int64, d *draft) error {
	if err := a.deps.Tags.ReplaceForTodo(dbc, todoID, d.tags); err != nil {
		return err
	}
	if err := a.deps.Comments.ReplaceForTodo(dbc, todoID, d.comments); err != nil {
		return err
	}
	return a.deps.Assignees.ReplaceForTodo(dbc, todoID, d.assignees)
}

func (a *todoAggregate) recordActivity(dbc dbctx.Context, todoID int64, action todo.ActivityAction, subject string, details map[string]any) error {
	if a.deps.Activities == nil {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return a.deps.Activities.Create(dbc, &todo.Activity{
		TodoID:  todoID,
		Action:  action,
		Subject: strings.TrimSpace(subject),
		Details: datatypes.JSON(raw),
	})
}

// draft is a validated TodoInput converted to rows, not yet persisted.
type draft struct {
	root      *todo.Todo
	tags      []todo.Tag
	comments  []todo.Comment
	assignees []todo.TodoAssignee
}

func buildDraft(op string, in domainagg.TodoInput, now time.Time, creating bool) (*draft, error) {
	priority, err := todo.ParsePriority(in.Priority)
	if err != nil {
		return nil, domainagg.FieldError(op, "priority", err.Error())
	}
	stage, err := todo.ParseStage(in.Stage)
	if err != nil {
		return nil, domainagg.FieldError(op, "stage", err.Error())
	}

	createdAt := normalizeTime(in.CreatedAt)
	if creating && createdAt.IsZero() {
		createdAt = now
	}
	d := &draft{
		root: &todo.Todo{
			Title:       in.Title,
			Description: in.Description,
			Completed:   in.Completed,
			Deadline:    normalizeTime(in.Deadline),
			Priority:    priority,
			Stage:       stage,
			CreatedBy:   in.CreatedBy,
			CreatedAt:   createdAt,
		},
		tags:      make([]todo.Tag, 0, len(in.Tags)),
		comments:  make([]todo.Comment, 0, len(in.Comments)),
		assignees: make([]todo.TodoAssignee, 0, len(in.AssignedTo)),
	}

	for i, t := range in.Tags {
		kind, err := todo.ParseTagKind(t.Name)
		if err != nil {
			return nil, domainagg.FieldError(op, fmt.Sprintf("tags[%d].name", i), err.Error())
		}
		d.tags = append(d.tags, todo.Tag{Name: kind})
	}
	for _, c := range in.Comments {
		at := normalizeTime(c.CreatedAt)
		if creating && at.IsZero() {
			at = now
		}
		d.comments = append(d.comments, todo.Comment{
			Text:      c.Text,
			CreatedBy: c.CreatedBy,
			CreatedAt: at,
		})
	}
	for _, as := range in.AssignedTo {
		d.assignees = append(d.assignees, todo.TodoAssignee{
			Email:       strings.TrimSpace(as.Email),
			DisplayName: as.DisplayName,
		})
	}
	return d, nil
}

// resolveOwner reuses a registered EmailAddress (by id, or by address when the
// id is zero) and registers a new one otherwise.
func resolveOwner(dbc dbctx.Context, emails todorepo.EmailAddressRepo, op string, in domainagg.EmailInput) (*todo.EmailAddress, error) {
	address := strings.TrimSpace(in.Email)
	if in.ID != 0 {
		row, err := emails.GetByID(dbc, in.ID)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return row, nil
		}
	} else if address != "" {
		row, err := emails.GetByEmail(dbc, address)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return row, nil
		}
	}
	if address == "" {
		return nil, domainagg.FieldError(op, "owned.email", "email is required")
	}
	row := &todo.EmailAddress{ID: in.ID, Email: address, DisplayName: in.DisplayName}
	if err := emails.Create(dbc, row); err != nil {
		return nil, err
	}
	return row, nil
}

// normalizeTime stores instants in UTC at the precision both drivers keep.
func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Microsecond)
}
