package supabase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

const feedbackTable = "user_feedback"

// feedbackRow mirrors the user_feedback table
type feedbackRow struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Content      string     `json:"content"`
	ReplyContent *string    `json:"reply_content"`
	CreatedAt    time.Time  `json:"created_at"`
	RepliedAt    *time.Time `json:"replied_at"`
}

// FeedbackRepository implements ports.FeedbackRepository on Supabase
type FeedbackRepository struct {
	client *supa.Client
	logger *zap.Logger
}

// NewFeedbackRepository creates a Supabase-backed feedback repository
func NewFeedbackRepository(client *supa.Client, logger *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{client: client, logger: logger}
}

// Create stores a feedback item
func (r *FeedbackRepository) Create(ctx context.Context, rec ports.FeedbackRecord) error {
	row := feedbackRow{
		ID:        newRecordID(rec.ID),
		UserID:    rec.UserID,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	_, _, err := r.client.From(feedbackTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return apperrors.NewDatabaseError("create feedback", err)
	}
	return nil
}

// ListByUser returns the user's feedback newest first
func (r *FeedbackRepository) ListByUser(ctx context.Context, userID string) ([]ports.FeedbackRecord, error) {
	var rows []feedbackRow
	_, err := r.client.From(feedbackTable).
		Select("id,user_id,content,reply_content,created_at,replied_at", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list feedback", err)
	}

	records := make([]ports.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		rec := ports.FeedbackRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
			RepliedAt: row.RepliedAt,
		}
		if row.ReplyContent != nil {
			rec.ReplyContent = *row.ReplyContent
		}
		records = append(records, rec)
	}
	return records, nil
}
