package service

import (
	"context"

	"smart_time/internal/domain"
	"smart_time/internal/logger"
)

// AuditService writes audit entries. Failures are logged, never returned.
type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, "", "", details)
}

// LogWithRequest also records client IP and User-Agent
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.WithContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

func (s *AuditService) LogTimer(ctx context.Context, userID, taskID int64, action string, elapsed float64) {
	details := map[string]interface{}{"task_id": taskID}
	if action == domain.AuditActionTimerStop {
		details["elapsed_seconds"] = elapsed
	}
	s.Log(ctx, userID, action, domain.AuditCategoryTimer, details)
}

func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
