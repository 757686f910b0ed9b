package service

import (
	"context"
	"time"

	"stationops/internal/model"
	"stationops/internal/repository"

	"github.com/sirupsen/logrus"
)

type EmailLogResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sent_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// EmailService records outbound automation mail and serves the dashboard
// feed. Delivery confirmations and tank alerts append here; the dashboard
// only ever reads.
type EmailService interface {
	Record(ctx context.Context, category, recipient, subject string, sendErr error)
	List(ctx context.Context, category string, page, limit int) ([]EmailLogResponse, int64, error)
}

type emailService struct {
	repo repository.EmailLogRepository
}

func NewEmailService(repo repository.EmailLogRepository) EmailService {
	return &emailService{repo: repo}
}

// Record appends one feed entry. Failures to write the feed are logged and
// swallowed: automation mail must never fail the business operation that
// triggered it.
func (s *emailService) Record(ctx context.Context, category, recipient, subject string, sendErr error) {
	now := time.Now()
	entry := &model.EmailLog{
		Category:  category,
		Recipient: recipient,
		Subject:   subject,
		Status:    model.EmailStatusSent,
		SentAt:    &now,
	}
	if sendErr != nil {
		entry.Status = model.EmailStatusFailed
		entry.Error = sendErr.Error()
		entry.SentAt = nil
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("category", category).Warn("failed to record email log")
		return
	}

	logrus.WithFields(logrus.Fields{
		"category":  category,
		"recipient": recipient,
		"status":    entry.Status,
	}).Info("email automation event recorded")
}

func (s *emailService) List(ctx context.Context, category string, page, limit int) ([]EmailLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.repo.List(ctx, category, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]EmailLogResponse, 0, len(logs))
	for _, l := range logs {
		item := EmailLogResponse{
			ID:        l.ID.String(),
			Category:  l.Category,
			Recipient: l.Recipient,
			Subject:   l.Subject,
			Status:    l.Status,
			Error:     l.Error,
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if l.SentAt != nil {
			item.SentAt = l.SentAt.Format("2006-01-02 15:04:05")
		}
		res = append(res, item)
	}

	return res, total, nil
}
