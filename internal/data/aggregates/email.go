package aggregates

import (
	"context"
	"fmt"
	"strings"

	todorepo "github.com/yungbote/todo-backend/internal/data/repos/todo"
	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
)

type EmailRegistryDeps struct {
	Base   BaseDeps
	Emails todorepo.EmailAddressRepo
}

type emailRegistry struct {
	deps EmailRegistryDeps
}

func NewEmailRegistry(deps EmailRegistryDeps) domainagg.EmailRegistry {
	return &emailRegistry{deps: deps}
}

func (r *emailRegistry) Contract() domainagg.Contract {
	return domainagg.EmailRegistryContract
}

// Register inserts a new address. A zero ID lets the store assign one; an id or
// address that is already registered is a conflict, never an overwrite.
func (r *emailRegistry) Register(ctx context.Context, in domainagg.EmailInput) (*todo.EmailAddress, error) {
	const op = "EmailAddress.Register"
	address := strings.TrimSpace(in.Email)
	if address == "" {
		return nil, domainagg.FieldError(op, "email", "email is required")
	}
	if in.ID < 0 {
		return nil, domainagg.FieldError(op, "id", "id must not be negative")
	}

	var out *todo.EmailAddress
	err := executeWrite(ctx, r.deps.Base, op, func(dbc dbctx.Context) error {
		if in.ID != 0 {
			existing, err := r.deps.Emails.GetByID(dbc, in.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("email address id %d already exists", in.ID), nil)
			}
		}
		existing, err := r.deps.Emails.GetByEmail(dbc, address)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewError(domainagg.CodeConflict, op, "email address already registered", nil)
		}
		row := &todo.EmailAddress{ID: in.ID, Email: address, DisplayName: strings.TrimSpace(in.DisplayName)}
		if err := r.deps.Emails.Create(dbc, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
