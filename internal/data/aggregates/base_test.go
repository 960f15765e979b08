package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/todo-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
)

func TestExecuteWriteObservesTodoOutcomes(t *testing.T) {
	cases := []struct {
		name      string
		write     func(f *todoFixture) error
		op        string
		status    string
		conflicts int
	}{
		{
			name: "created",
			write: func(f *todoFixture) error {
				_, err := f.agg.Create(context.Background(), sampleInput())
				return err
			},
			op:     "Todo.Create",
			status: "success",
		},
		{
			name: "duplicate tag",
			write: func(f *todoFixture) error {
				in := sampleInput()
				in.Tags = []domainagg.TagInput{{Name: "Bugfix"}, {Name: "Bugfix"}}
				_, err := f.agg.Create(context.Background(), in)
				return err
			},
			op:        "Todo.Create",
			status:    string(domainagg.CodeConflict),
			conflicts: 1,
		},
		{
			name: "unknown tag",
			write: func(f *todoFixture) error {
				in := sampleInput()
				in.Tags = []domainagg.TagInput{{Name: "Epic"}}
				_, err := f.agg.Create(context.Background(), in)
				return err
			},
			op:     "Todo.Create",
			status: string(domainagg.CodeValidation),
		},
		{
			name: "missing todo",
			write: func(f *todoFixture) error {
				_, err := f.agg.Update(context.Background(), 404, sampleInput())
				return err
			},
			op:     "Todo.Update",
			status: string(domainagg.CodeNotFound),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTodoFixture(t)
			err := tc.write(f)
			if got := aggregateErrorStatus(err); got != tc.status {
				t.Fatalf("status: want=%s got=%s (err=%v)", tc.status, got, err)
			}
			if len(f.hooks.Operations) != 1 {
				t.Fatalf("operations count: want=1 got=%d", len(f.hooks.Operations))
			}
			if op := f.hooks.Operations[0]; op.Name != tc.op || op.Status != tc.status {
				t.Fatalf("observed operation: %+v", op)
			}
			if len(f.hooks.Conflicts) != tc.conflicts {
				t.Fatalf("conflict hooks: %+v", f.hooks.Conflicts)
			}
			if len(f.hooks.Retries) != 0 {
				t.Fatalf("retry hooks should be empty, got=%+v", f.hooks.Retries)
			}
		})
	}
}

func TestExecuteWriteRunsTransientFailuresOnce(t *testing.T) {
	db := testutil.DB(t)
	hooks := &spyHooks{}
	calls := 0

	err := executeWrite(context.Background(), BaseDeps{
		DB:     db,
		Log:    testutil.Logger(t),
		Runner: NewGormTxRunner(db),
		Hooks:  hooks,
	}, "Todo.Update", func(dbc dbctx.Context) error {
		calls++
		if dbc.Tx == nil {
			t.Fatalf("write must run inside a transaction")
		}
		return errors.New("deadlock detected")
	})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("write executed %d times, want exactly once", calls)
	}
	if len(hooks.Retries) != 1 || hooks.Retries[0] != "Todo.Update" {
		t.Fatalf("retry hooks: %+v", hooks.Retries)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{domainagg.FieldError("Todo.Create", "priority", "unknown priority"), string(domainagg.CodeValidation)},
		{domainagg.NotFound("Todo.Update", "todo", 7), string(domainagg.CodeNotFound)},
		{gorm.ErrDuplicatedKey, string(domainagg.CodeConflict)},
		{errors.New("FOREIGN KEY constraint failed"), string(domainagg.CodePreconditionFailed)},
		{context.DeadlineExceeded, string(domainagg.CodeRetryable)},
		{errors.New("disk on fire"), string(domainagg.CodeInternal)},
	}
	for _, tc := range cases {
		if got := aggregateErrorStatus(tc.err); got != tc.want {
			t.Fatalf("aggregateErrorStatus(%v): want=%s got=%s", tc.err, tc.want, got)
		}
	}
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
