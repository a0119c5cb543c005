package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
)

// AnonymousActor is recorded when a state change has no authenticated user.
const AnonymousActor = "anonymous"

type AuditService interface {
	// Record writes one audit entry asynchronously. It never returns an
	// error: audit failures must not fail the primary request.
	Record(actor, action string, requestContext map[string]interface{}, outcome string)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Record(actor, action string, requestContext map[string]interface{}, outcome string) {
	if actor == "" {
		actor = AnonymousActor
	}

	serialized, err := json.Marshal(requestContext)
	if err != nil {
		logger.Error("Failed to serialize audit context", err, map[string]interface{}{
			"action": action,
		})
		serialized = []byte("{}")
	}

	entry := &model.AuditLog{
		EntryID:   uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Context:   string(serialized),
		Outcome:   outcome,
		CreatedAt: time.Now(),
	}

	go func() {
		if err := s.auditRepo.Create(entry); err != nil {
			logger.Error("Audit write failed, request unaffected", err, map[string]interface{}{
				"action": action,
				"actor":  actor,
			})
		}
	}()
}
