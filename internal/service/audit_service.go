package service

import (
	"context"
	"encoding/json"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntry describes one audited action. A non-nil Err records the action
// as unsuccessful.
type AuditEntry struct {
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Details      map[string]any
	Err          error
}

type AuditService interface {
	// Record is best effort: a failed write is logged, never returned.
	Record(ctx context.Context, actor domain.Actor, entry AuditEntry)

	List(ctx context.Context, f ports.AuditFilter) (*dto.AuditLogList, error)
	RecentActivity(ctx context.Context, limit int) (*dto.ActivityList, error)
	UserActivity(ctx context.Context, userID string, limit int) (*dto.ActivityList, error)
}

type auditService struct {
	repo ports.AuditRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewAuditService(repo ports.AuditRepository, log *zap.Logger) AuditService {
	return &auditService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (s *auditService) Record(ctx context.Context, actor domain.Actor, entry AuditEntry) {
	logEntry := &domain.AuditLog{
		ID:           uuid.NewString(),
		UserID:       actor.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		IPAddress:    actor.IP,
		UserAgent:    actor.UserAgent,
		Details:      entry.Details,
		Timestamp:    s.now().UTC(),
		Success:      entry.Err == nil,
	}
	if entry.ResourceID != "" {
		logEntry.ResourceID = &entry.ResourceID
	}
	if entry.Err != nil {
		msg := entry.Err.Error()
		logEntry.ErrorMessage = &msg
	}

	if err := s.repo.Create(ctx, logEntry); err != nil {
		s.log.Error("failed to write audit log",
			zap.String("action", string(entry.Action)),
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, f ports.AuditFilter) (*dto.AuditLogList, error) {
	logs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.AuditLogList{Total: total, Logs: logs}, nil
}

func (s *auditService) RecentActivity(ctx context.Context, limit int) (*dto.ActivityList, error) {
	logs, _, err := s.repo.List(ctx, ports.AuditFilter{Page: ports.Page{Limit: limit}})
	if err != nil {
		return nil, err
	}
	return newActivityList("", logs), nil
}

func (s *auditService) UserActivity(ctx context.Context, userID string, limit int) (*dto.ActivityList, error) {
	logs, _, err := s.repo.List(ctx, ports.AuditFilter{Page: ports.Page{Limit: limit}, UserID: userID})
	if err != nil {
		return nil, err
	}
	return newActivityList(userID, logs), nil
}

func newActivityList(userID string, logs []domain.AuditLog) *dto.ActivityList {
	items := make([]dto.ActivityItem, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.ActivityItem{
			ID:        l.ID,
			Type:      activityType(string(l.Action)),
			Action:    string(l.Action),
			Candidate: activitySubject(l.Details),
			Score:     detailScore(l.Details),
			UserID:    l.UserID,
			IPAddress: l.IPAddress,
			Details:   l.Details,
			Timestamp: l.Timestamp,
		})
	}
	return &dto.ActivityList{Success: true, UserID: userID, Count: len(items), Activities: items}
}

// activityType buckets an action for display.
func activityType(action string) string {
	a := strings.ToLower(action)
	switch {
	case strings.Contains(a, "match"), strings.Contains(a, "process"), strings.Contains(a, "workflow"):
		return "success"
	case strings.Contains(a, "upload"), strings.Contains(a, "create"):
		return "info"
	case strings.Contains(a, "delete"), strings.Contains(a, "remove"):
		return "warning"
	}
	return "info"
}

func activitySubject(details map[string]any) string {
	for _, key := range []string{"candidate_name", "filename", "jd_title"} {
		if v, ok := details[key].(string); ok && v != "" {
			return v
		}
	}
	return "System"
}

func detailScore(details map[string]any) *float64 {
	switch v := details["match_score"].(type) {
	case float64:
		return &v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	case int:
		f := float64(v)
		return &f
	}
	return nil
}
