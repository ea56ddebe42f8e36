package handlers

import (
	"net/http"
	"strconv"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/repository"
	"smart_time/internal/service"

	"github.com/gin-gonic/gin"
)

type taskRequest struct {
	CategoryID       int64      `json:"category_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	DueDate          *time.Time `json:"due_date"`
	EstimatedSeconds *int64     `json:"estimated_duration_seconds"`
}

func (r taskRequest) input() service.TaskInput {
	in := service.TaskInput{
		CategoryID:  r.CategoryID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.TaskPriority(r.Priority),
		DueDate:     r.DueDate,
	}
	if r.EstimatedSeconds != nil {
		d := time.Duration(*r.EstimatedSeconds) * time.Second
		in.EstimatedDuration = &d
	}
	return in
}

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	f := repository.TaskFilter{
		Status:   domain.TaskStatus(c.Query("status")),
		Priority: domain.TaskPriority(c.Query("priority")),
		Query:    c.Query("q"),
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		f.CategoryID = id
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		f.Limit = v
	}

	loc, ok := location(c)
	if !ok {
		return
	}
	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		t, err := parseTime(v, loc)
		if err != nil {
			respondError(c, err)
			return
		}
		*dst = &t
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": newTaskViews(tasks)})
}

func (h *Handler) DueToday(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	tasks, err := h.Tasks.DueToday(c.Request.Context(), userID, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": newTaskViews(tasks)})
}

func (h *Handler) Overdue(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	tasks, err := h.Tasks.Overdue(c.Request.Context(), userID, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": newTaskViews(tasks)})
}

func (h *Handler) RunningTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	tasks, err := h.Tasks.Running(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": newTaskViews(tasks)})
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskView(task, time.Now()))
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), userID, req.input(), actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskView(task, time.Now()))
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), userID, id, req.input(), actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskView(task, time.Now()))
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.Tasks.UpdateStatus(c.Request.Context(), userID, id, domain.TaskStatus(req.Status), actor(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskView(task, time.Now()))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
