package services

import (
	"context"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// NoticeService carries one-shot messages across a redirect.
type NoticeService struct {
	repo *repositories.StoreRepository
}

func NewNoticeService(repo *repositories.StoreRepository) *NoticeService {
	return &NoticeService{repo: repo}
}

// Toast queues a short message that fades out.
func (s *NoticeService) Toast(ctx context.Context, text string) {
	s.push(ctx, models.Notice{Kind: models.NoticeToast, Text: text})
}

// Alert queues a message that stays until dismissed.
func (s *NoticeService) Alert(ctx context.Context, text string) {
	s.push(ctx, models.Notice{Kind: models.NoticeAlert, Text: text})
}

func (s *NoticeService) push(ctx context.Context, n models.Notice) {
	if err := s.repo.PushNotice(ctx, n); err != nil {
		logger.WithCtx(ctx).Warn("notice: queue failed", "error", err, "text", n.Text)
	}
}

// Pull returns and clears the pending notices. Store errors are logged
// and yield none.
func (s *NoticeService) Pull(ctx context.Context) []models.Notice {
	notices, err := s.repo.PullNotices(ctx)
	if err != nil {
		logger.WithCtx(ctx).Warn("notice: read failed", "error", err)
		return nil
	}
	return notices
}
