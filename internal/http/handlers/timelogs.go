package handlers

import (
	"net/http"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/service"

	"github.com/gin-gonic/gin"
)

type timeLogRequest struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     string     `json:"notes"`
}

func (r timeLogRequest) input() service.TimeLogInput {
	return service.TimeLogInput{StartTime: r.StartTime, EndTime: r.EndTime, Notes: r.Notes}
}

func (h *Handler) ListTaskTimeLogs(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	logs, err := h.TimeLogs.ListByTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_logs": newTimeLogViews(logs)})
}

func (h *Handler) CreateTimeLog(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req timeLogRequest
	if !bindJSON(c, &req) {
		return
	}

	l, err := h.TimeLogs.Create(c.Request.Context(), userID, taskID, req.input(), actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTimeLogView(l))
}

func (h *Handler) GetTimeLog(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	l, err := h.TimeLogs.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimeLogView(l))
}

func (h *Handler) UpdateTimeLog(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req timeLogRequest
	if !bindJSON(c, &req) {
		return
	}

	l, err := h.TimeLogs.Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimeLogView(l))
}

func (h *Handler) DeleteTimeLog(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.TimeLogs.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTimeLogs returns the user's sessions in [from, to), last 7 days by default
func (h *Handler) ListTimeLogs(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	now := time.Now().In(loc)
	from, to, ok := queryRange(c, loc, now.AddDate(0, 0, -7), now)
	if !ok {
		return
	}

	logs, err := h.TimeLogs.Between(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"time_logs":     newTimeLogViews(logs),
		"total_seconds": seconds(domain.TotalDuration(logs)),
	})
}

func (h *Handler) TaskTimeSpent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	total, err := h.TimeLogs.TotalForTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID, "total_seconds": seconds(total)})
}
