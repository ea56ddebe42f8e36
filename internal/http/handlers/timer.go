package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) StartTimer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, log, err := h.Tasks.StartTimer(c.Request.Context(), userID, id, actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task":     newTaskView(task, time.Now()),
		"time_log": newTimeLogView(log),
	})
}

func (h *Handler) StopTimer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// body is optional
	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	task, log, err := h.Tasks.StopTimer(c.Request.Context(), userID, id, req.Notes, actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task":     newTaskView(task, time.Now()),
		"time_log": newTimeLogView(log),
	})
}

func (h *Handler) TimerState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	state, err := h.Tasks.Timer(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimerView(state))
}

// CompleteTask stops a running timer first, then marks the task completed
// (or reopens it with {"is_completed": false})
func (h *Handler) CompleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	req := struct {
		IsCompleted *bool `json:"is_completed"`
	}{}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	completed := req.IsCompleted == nil || *req.IsCompleted

	task, err := h.Tasks.Complete(c.Request.Context(), userID, id, completed, actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskView(task, time.Now()))
}
