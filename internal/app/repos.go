package app

import (
	"gorm.io/gorm"

	todorepo "github.com/yungbote/todo-backend/internal/data/repos/todo"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type Repos struct {
	Todo     todorepo.TodoRepo
	Tag      todorepo.TagRepo
	Comment  todorepo.CommentRepo
	Assignee todorepo.AssigneeRepo
	Email    todorepo.EmailAddressRepo
	Activity todorepo.ActivityRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Todo:     todorepo.NewTodoRepo(db, log),
		Tag:      todorepo.NewTagRepo(db, log),
		Comment:  todorepo.NewCommentRepo(db, log),
		Assignee: todorepo.NewAssigneeRepo(db, log),
		Email:    todorepo.NewEmailAddressRepo(db, log),
		Activity: todorepo.NewActivityRepo(db, log),
	}
}
