package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"smart_time/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), userID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// LinkTelegram accepts a Telegram Login Widget payload; null or {} unlinks
func (h *Handler) LinkTelegram(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var raw map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, 4096))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if len(raw) == 0 {
		if err := h.Users.LinkTelegram(ctx, userID, nil); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"telegram_chat_id": nil})
		return
	}

	if h.BotToken == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telegram bot is not configured"})
		return
	}

	fields := url.Values{}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields.Set(k, val)
		case json.Number:
			fields.Set(k, val.String())
		case bool:
			fields.Set(k, strconv.FormatBool(val))
		}
	}

	chatID, err := service.VerifyTelegramLogin(fields, h.BotToken, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Users.LinkTelegram(ctx, userID, &chatID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"telegram_chat_id": chatID})
}

func (h *Handler) DeleteMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.Users.Deactivate(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyAudit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	logs, err := h.Audit.GetUserAuditLogs(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": logs})
}
