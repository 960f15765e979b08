package services

import (
	"context"

	todorepo "github.com/yungbote/todo-backend/internal/data/repos/todo"
	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type EmailService interface {
	RegisterEmail(ctx context.Context, in domainagg.EmailInput) (*todo.EmailAddress, error)
	ListEmails(ctx context.Context, search string) ([]*todo.EmailAddress, error)
}

type emailService struct {
	log      *logger.Logger
	emails   todorepo.EmailAddressRepo
	registry domainagg.EmailRegistry
}

func NewEmailService(log *logger.Logger, emails todorepo.EmailAddressRepo, registry domainagg.EmailRegistry) EmailService {
	return &emailService{
		log:      log.With("service", "EmailService"),
		emails:   emails,
		registry: registry,
	}
}

func (s *emailService) RegisterEmail(ctx context.Context, in domainagg.EmailInput) (*todo.EmailAddress, error) {
	row, err := s.registry.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("email address registered", "email_id", row.ID)
	return row, nil
}

func (s *emailService) ListEmails(ctx context.Context, search string) ([]*todo.EmailAddress, error) {
	rows, err := s.emails.List(dbctx.Context{Ctx: ctx}, search)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "EmailAddress.List", err)
	}
	return rows, nil
}
