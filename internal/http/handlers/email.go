package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/todo-backend/internal/http/response"
	"github.com/yungbote/todo-backend/internal/platform/logger"
	"github.com/yungbote/todo-backend/internal/services"
	"github.com/yungbote/todo-backend/internal/views"
)

type EmailHandler struct {
	log    *logger.Logger
	emails services.EmailService
}

func NewEmailHandler(log *logger.Logger, emails services.EmailService) *EmailHandler {
	return &EmailHandler{
		log:    log.With("handler", "EmailHandler"),
		emails: emails,
	}
}

// POST /api/todo/email
// body: { "id": 0, "email": "...", "displayName": "..." }
func (h *EmailHandler) RegisterEmail(c *gin.Context) {
	var req EmailRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	row, err := h.emails.RegisterEmail(c.Request.Context(), req.toInput())
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Email(row))
}

// GET /api/todo/emaillist?search=
func (h *EmailHandler) ListEmails(c *gin.Context) {
	rows, err := h.emails.ListEmails(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.RespondFailure(c, h.log, err)
		return
	}
	response.RespondOK(c, views.Emails(rows))
}
