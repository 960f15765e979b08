package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/platform/apierr"
)

// TodoRequest is the full Todo representation accepted by create and update.
// Any id in the body is ignored; the path decides which Todo is written.
type TodoRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Completed   bool              `json:"completed"`
	Deadline    time.Time         `json:"deadline"`
	Priority    string            `json:"priority"`
	Stage       string            `json:"stage"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	Owned       EmailRequest      `json:"owned"`
	Tags        []TagRequest      `json:"tags"`
	Comments    []CommentRequest  `json:"comments"`
	AssignedTo  []AssigneeRequest `json:"assignedTo"`
}

type EmailRequest struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type TagRequest struct {
	Name string `json:"name"`
}

type CommentRequest struct {
	Text      string    `json:"text"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type AssigneeRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (r TodoRequest) toInput() domainagg.TodoInput {
	in := domainagg.TodoInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Deadline:    r.Deadline,
		Priority:    r.Priority,
		Stage:       r.Stage,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		Owned:       r.Owned.toInput(),
		Tags:        make([]domainagg.TagInput, 0, len(r.Tags)),
		Comments:    make([]domainagg.CommentInput, 0, len(r.Comments)),
		AssignedTo:  make([]domainagg.AssigneeInput, 0, len(r.AssignedTo)),
	}
	for _, t := range r.Tags {
		in.Tags = append(in.Tags, domainagg.TagInput{Name: t.Name})
	}
	for _, c := range r.Comments {
		in.Comments = append(in.Comments, domainagg.CommentInput{Text: c.Text, CreatedBy: c.CreatedBy, CreatedAt: c.CreatedAt})
	}
	for _, a := range r.AssignedTo {
		in.AssignedTo = append(in.AssignedTo, domainagg.AssigneeInput{Email: a.Email, DisplayName: a.DisplayName})
	}
	return in
}

func (r EmailRequest) toInput() domainagg.EmailInput {
	return domainagg.EmailInput{ID: r.ID, Email: r.Email, DisplayName: r.DisplayName}
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.BadRequest("invalid request body: %v", err)
	}
	return nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apierr.BadRequest("%s: must be a positive integer", name)
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.BadRequest("%s: must be an integer", name)
	}
	return n, nil
}

func queryBool(c *gin.Context, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierr.BadRequest("%s: must be true or false", name)
	}
	return b, nil
}
