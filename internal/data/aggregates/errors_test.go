package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
)

func TestMapError_FieldErrorKeepsField(t *testing.T) {
	in := domainagg.FieldError("Todo.Create", "stage", "unknown stage")
	err := MapError("op", in)
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) || aggErr.Code != domainagg.CodeValidation || aggErr.Field != "stage" {
		t.Fatalf("expected validation on stage, got %v", err)
	}
}

func TestMapError_Transient(t *testing.T) {
	cases := []error{
		&pgconn.PgError{Code: "40001", Message: "could not serialize access"},
		&pgconn.PgError{Code: "40P01", Message: "deadlock detected"},
		errors.New("database is locked"),
		context.Canceled,
	}
	for _, in := range cases {
		if err := MapError("op", in); !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("MapError(%v): expected retryable, got %q", in, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	wrapped := fmt.Errorf("repo: %w", in)
	if out := MapError("other", wrapped); !domainagg.IsCode(out, domainagg.CodeRetryable) {
		t.Fatalf("expected wrapped aggregate code to survive, got %v", out)
	}
}

func TestMapError_UniqueViolations(t *testing.T) {
	cases := []error{
		&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
		errors.New("UNIQUE constraint failed: tag.todo_id, tag.name"),
		fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey),
	}
	for _, in := range cases {
		if err := MapError("op", in); !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("MapError(%v): expected conflict, got %q", in, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_Internal(t *testing.T) {
	err := MapError("op", errors.New("disk on fire"))
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal code, got %q", domainagg.CodeOf(err))
	}
}
