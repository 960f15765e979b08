package aggregates

import (
	"context"
	"time"

	"github.com/yungbote/todo-backend/internal/domain/todo"
)

// TxOwnership names who opens the transaction around a write.
type TxOwnership string

const TxOwnedByAggregate TxOwnership = "aggregate_owned"

// Contract documents the write boundary an aggregate implementation guarantees.
type Contract struct {
	Name        string
	TxOwnership TxOwnership
	Notes       string
}

type Aggregate interface {
	Contract() Contract
}

var TodoAggregateContract = Contract{
	Name:        "Todo.TodoAggregate",
	TxOwnership: TxOwnedByAggregate,
	Notes:       "Owns the Todo root, its tags/comments/assignees and the owner reference; children are replaced wholesale on every write.",
}

var EmailRegistryContract = Contract{
	Name:        "Todo.EmailRegistry",
	TxOwnership: TxOwnedByAggregate,
	Notes:       "Registers EmailAddress rows; ids and addresses are unique.",
}

// TodoAggregate applies whole-aggregate writes. Every method runs in one transaction
// and returns *Error with CodeValidation, CodeNotFound, CodeConflict or CodeInternal.
type TodoAggregate interface {
	Aggregate

	Create(ctx context.Context, in TodoInput) (*todo.Todo, error)
	Update(ctx context.Context, id int64, in TodoInput) (*todo.Todo, error)
	Delete(ctx context.Context, in DeleteTodoInput) error
	DeleteComment(ctx context.Context, in DeleteCommentInput) error
}

type EmailRegistry interface {
	Aggregate

	Register(ctx context.Context, in EmailInput) (*todo.EmailAddress, error)
}

// TodoInput is the full incoming representation. Fields left at their zero
// value overwrite the stored value; nothing is patched.
type TodoInput struct {
	Title       string
	Description string
	Completed   bool
	Deadline    time.Time
	Priority    string
	Stage       string
	CreatedBy   string
	CreatedAt   time.Time

	Owned      EmailInput
	Tags       []TagInput
	Comments   []CommentInput
	AssignedTo []AssigneeInput

	// Subject is the verified caller, recorded on the activity row.
	Subject string
}

type EmailInput struct {
	ID          int64
	Email       string
	DisplayName string
}

type TagInput struct {
	Name string
}

type CommentInput struct {
	Text      string
	CreatedBy string
	CreatedAt time.Time
}

type AssigneeInput struct {
	Email       string
	DisplayName string
}

type DeleteTodoInput struct {
	TodoID  int64
	Subject string
}

type DeleteCommentInput struct {
	TodoID    int64
	CommentID int64
	Subject   string
}
