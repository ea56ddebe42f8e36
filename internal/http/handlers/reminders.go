package handlers

import (
	"net/http"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/service"

	"github.com/gin-gonic/gin"
)

type reminderRequest struct {
	TaskID       *int64    `json:"task_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ReminderTime time.Time `json:"reminder_time"`
	Type         string    `json:"type"`
	IsActive     *bool     `json:"is_active"`
}

func (r reminderRequest) input() service.ReminderInput {
	typ := domain.ReminderType(r.Type)
	if typ == "" {
		typ = domain.ReminderOneTime
	}
	return service.ReminderInput{
		TaskID:       r.TaskID,
		Title:        r.Title,
		Description:  r.Description,
		ReminderTime: r.ReminderTime,
		Type:         typ,
		IsActive:     r.IsActive,
	}
}

// ListReminders returns active reminders; ?due=true narrows to the fired ones
func (h *Handler) ListReminders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var (
		reminders []*domain.Reminder
		err       error
	)
	if c.Query("due") == "true" {
		reminders, err = h.Reminders.Due(c.Request.Context(), userID)
	} else {
		reminders, err = h.Reminders.Active(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

func (h *Handler) ListAllReminders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	reminders, err := h.Reminders.All(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

func (h *Handler) GetReminder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	r, err := h.Reminders.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateReminder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req reminderRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.Reminders.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateReminder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req reminderRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.Reminders.Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReminder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Reminders.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CompleteReminder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	r, err := h.Reminders.Complete(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
