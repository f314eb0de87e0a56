package usecase

import (
	"context"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

const (
	DefaultAuditLimit = 5
	maxAuditLimit     = 500
)

// AuditUsecase exposes the audit trail for display.
type AuditUsecase struct {
	repo domain.AuditRepository
}

func NewAuditUsecase(r domain.AuditRepository) *AuditUsecase {
	return &AuditUsecase{repo: r}
}

// Recent returns the newest records, oldest first. A non-positive limit
// selects DefaultAuditLimit.
func (u *AuditUsecase) Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)
	return u.repo.Recent(ctx, limit)
}
