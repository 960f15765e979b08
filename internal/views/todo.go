// Package views projects stored aggregates into the JSON shapes the API
// returns. Every function here is total over well-formed aggregates.
package views

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/yungbote/todo-backend/internal/domain/todo"
)

const CommentDeletedMessage = "Comment deleted successfully"

type EmailAddressView struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type TagView struct {
	ID     int64  `json:"id"`
	TodoID int64  `json:"todoId"`
	Name   string `json:"name"`
}

type CommentView struct {
	ID        int64     `json:"id"`
	TodoID    int64     `json:"todoId"`
	Text      string    `json:"text"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type AssigneeView struct {
	ID          int64  `json:"id"`
	TodoID      int64  `json:"todoId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type TodoView struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Completed   bool             `json:"completed"`
	Deadline    time.Time        `json:"deadline"`
	Priority    string           `json:"priority"`
	Stage       string           `json:"stage"`
	CreatedBy   string           `json:"createdBy"`
	CreatedAt   time.Time        `json:"createdAt"`
	Owned       EmailAddressView `json:"owned"`
	Tags        []TagView        `json:"tags"`
	Comments    []CommentView    `json:"comments"`
	AssignedTo  []AssigneeView   `json:"assignedTo"`
}

type TodoPage struct {
	TotalRecords int64      `json:"totalRecords"`
	Todos        []TodoView `json:"todos"`
}

type EmailList struct {
	Emails []EmailAddressView `json:"emails"`
}

type MessageView struct {
	Message string `json:"message"`
}

type ActivityView struct {
	ID        int64           `json:"id"`
	TodoID    int64           `json:"todoId"`
	Action    string          `json:"action"`
	Subject   string          `json:"subject"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ActivityList struct {
	Activity []ActivityView `json:"activity"`
}

func Email(e *todo.EmailAddress) EmailAddressView {
	if e == nil {
		return EmailAddressView{}
	}
	return EmailAddressView{ID: e.ID, Email: e.Email, DisplayName: e.DisplayName}
}

func Emails(rows []*todo.EmailAddress) EmailList {
	out := EmailList{Emails: make([]EmailAddressView, 0, len(rows))}
	for _, e := range rows {
		if e == nil {
			continue
		}
		out.Emails = append(out.Emails, Email(e))
	}
	return out
}

// Todo renders one aggregate. Child collections come out ordered by id.
func Todo(t *todo.Todo) TodoView {
	if t == nil {
		return TodoView{Tags: []TagView{}, Comments: []CommentView{}, AssignedTo: []AssigneeView{}}
	}
	v := TodoView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Deadline:    t.Deadline,
		Priority:    t.Priority.String(),
		Stage:       t.Stage.String(),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		Owned:       Email(t.Owned),
		Tags:        make([]TagView, 0, len(t.Tags)),
		Comments:    make([]CommentView, 0, len(t.Comments)),
		AssignedTo:  make([]AssigneeView, 0, len(t.AssignedTo)),
	}
	if t.Owned == nil {
		v.Owned.ID = t.OwnedID
	}
	for _, tag := range t.Tags {
		v.Tags = append(v.Tags, TagView{ID: tag.ID, TodoID: tag.TodoID, Name: tag.Name.String()})
	}
	for _, c := range t.Comments {
		v.Comments = append(v.Comments, CommentView{
			ID:        c.ID,
			TodoID:    c.TodoID,
			Text:      c.Text,
			CreatedBy: c.CreatedBy,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, a := range t.AssignedTo {
		v.AssignedTo = append(v.AssignedTo, AssigneeView{
			ID:          a.ID,
			TodoID:      a.TodoID,
			Email:       a.Email,
			DisplayName: a.DisplayName,
		})
	}
	sort.SliceStable(v.Tags, func(i, j int) bool { return v.Tags[i].ID < v.Tags[j].ID })
	sort.SliceStable(v.Comments, func(i, j int) bool { return v.Comments[i].ID < v.Comments[j].ID })
	sort.SliceStable(v.AssignedTo, func(i, j int) bool { return v.AssignedTo[i].ID < v.AssignedTo[j].ID })
	return v
}

func Page(rows []*todo.Todo, total int64) TodoPage {
	out := TodoPage{TotalRecords: total, Todos: make([]TodoView, 0, len(rows))}
	for _, t := range rows {
		if t == nil {
			continue
		}
		out.Todos = append(out.Todos, Todo(t))
	}
	return out
}

func Activities(rows []*todo.Activity) ActivityList {
	out := ActivityList{Activity: make([]ActivityView, 0, len(rows))}
	for _, a := range rows {
		if a == nil {
			continue
		}
		v := ActivityView{
			ID:        a.ID,
			TodoID:    a.TodoID,
			Action:    string(a.Action),
			Subject:   a.Subject,
			CreatedAt: a.CreatedAt,
		}
		if len(a.Details) > 0 {
			v.Details = json.RawMessage(a.Details)
		}
		out.Activity = append(out.Activity, v)
	}
	return out
}
