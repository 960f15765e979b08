package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/todo-backend/internal/http/response"
	"github.com/yungbote/todo-backend/internal/platform/logger"
	"github.com/yungbote/todo-backend/internal/services"
	"github.com/yungbote/todo-backend/internal/views"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 10
	defaultSortBy     = "createdAt"
)

type TodoHandler struct {
	log   *logger.Logger
	todos services.TodoService
}

func NewTodoHandler(log *logger.Logger, todos services.TodoService) *TodoHandler {
	return &TodoHandler{
		log:   log.With("handler", "TodoHandler"),
		todos: todos,
	}
}

// GET /api/todo
func (h *TodoHandler) Index(c *gin.Context) {
	response.RespondOK(c, gin.H{})
}

// GET /api/todo/:id
func (h *TodoHandler) GetTodo(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	row, err := h.todos.GetTodo(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Todo(row))
}

// GET /api/todo/list?pageNumber&pageSize&sortBy&isDescending&search
func (h *TodoHandler) ListTodos(c *gin.Context) {
	pageNumber, err := queryInt(c, "pageNumber", defaultPageNumber)
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	pageSize, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	desc, err := queryBool(c, "isDescending", false)
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	sortBy := c.Query("sortBy")
	if sortBy == "" {
		sortBy = defaultSortBy
	}

	rows, total, err := h.todos.ListTodos(c.Request.Context(), services.ListTodosParams{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		SortBy:     sortBy,
		Descending: desc,
		Search:     c.Query("search"),
	})
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Page(rows, total))
}

// POST /api/todo/createtodo
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req TodoRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	row, err := h.todos.CreateTodo(c.Request.Context(), req.toInput())
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Todo(row))
}

// PUT /api/todo/updatetodo/:id
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	var req TodoRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	row, err := h.todos.UpdateTodo(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Todo(row))
}

// DELETE /api/todo/deletetodo/:id
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	if err := h.todos.DeleteTodo(c.Request.Context(), id); err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"id": id, "deleted": true})
}

// DELETE /api/todo/delete/:id/comment/:commentId
func (h *TodoHandler) DeleteComment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	if err := h.todos.DeleteComment(c.Request.Context(), id, commentID); err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.MessageView{Message: views.CommentDeletedMessage})
}

// GET /api/todo/:id/activity
func (h *TodoHandler) ListActivity(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	rows, err := h.todos.ListActivity(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Activities(rows))
}
