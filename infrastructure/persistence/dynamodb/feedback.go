package dynamodb

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

// feedbackItem is the DynamoDB item for one feedback entry
type feedbackItem struct {
	PK           string `dynamodbav:"PK"` // USER#<userID>
	SK           string `dynamodbav:"SK"` // FEEDBACK#<id>
	EntityType   string `dynamodbav:"EntityType"`
	FeedbackID   string `dynamodbav:"FeedbackID"`
	UserID       string `dynamodbav:"UserID"`
	Content      string `dynamodbav:"Content"`
	ReplyContent string `dynamodbav:"ReplyContent,omitempty"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	RepliedAt    string `dynamodbav:"RepliedAt,omitempty"`
}

// FeedbackRepository implements ports.FeedbackRepository on DynamoDB
type FeedbackRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewFeedbackRepository creates a DynamoDB-backed feedback repository
func NewFeedbackRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{client: client, tableName: tableName, logger: logger}
}

// Create stores a feedback item
func (r *FeedbackRepository) Create(ctx context.Context, rec ports.FeedbackRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	item := feedbackItem{
		PK:         "USER#" + rec.UserID,
		SK:         "FEEDBACK#" + id,
		EntityType: "FEEDBACK",
		FeedbackID: id,
		UserID:     rec.UserID,
		Content:    rec.Content,
		CreatedAt:  createdAt.Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewInternalError("failed to encode feedback").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return apperrors.NewDatabaseError("create feedback", err)
	}
	return nil
}

// ListByUser returns the user's feedback newest first
func (r *FeedbackRepository) ListByUser(ctx context.Context, userID string) ([]ports.FeedbackRecord, error) {
	keyCond := expression.Key("PK").Equal(expression.Value("USER#" + userID)).
		And(expression.Key("SK").BeginsWith("FEEDBACK#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build feedback query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list feedback", err)
	}

	var items []feedbackItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, apperrors.NewDatabaseError("decode feedback", err)
	}

	records := make([]ports.FeedbackRecord, 0, len(items))
	for _, item := range items {
		createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
		rec := ports.FeedbackRecord{
			ID:           item.FeedbackID,
			UserID:       item.UserID,
			Content:      item.Content,
			ReplyContent: item.ReplyContent,
			CreatedAt:    createdAt,
		}
		if item.RepliedAt != "" {
			if repliedAt, err := time.Parse(time.RFC3339Nano, item.RepliedAt); err == nil {
				rec.RepliedAt = &repliedAt
			}
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].CreatedAt.After(records[b].CreatedAt)
	})
	return records, nil
}
