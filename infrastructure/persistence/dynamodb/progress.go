package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	apperrors "fishdex/pkg/errors"
)

// progressItem is the DynamoDB item for a user's collection progress
type progressItem struct {
	PK           string   `dynamodbav:"PK"` // USER#<userID>
	SK           string   `dynamodbav:"SK"` // PROGRESS
	EntityType   string   `dynamodbav:"EntityType"`
	UserID       string   `dynamodbav:"UserID"`
	CollectedIDs []string `dynamodbav:"CollectedIDs"`
	UpdatedAt    string   `dynamodbav:"UpdatedAt"`
}

// ProgressRepository implements ports.ProgressRepository on DynamoDB
type ProgressRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProgressRepository creates a DynamoDB-backed progress repository
func NewProgressRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{client: client, tableName: tableName, logger: logger}
}

// Get returns the user's collected entry ids, empty when unknown
func (r *ProgressRepository) Get(ctx context.Context, userID string) ([]string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "USER#" + userID},
			"SK": &types.AttributeValueMemberS{Value: "PROGRESS"},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get progress", err)
	}
	if out.Item == nil {
		return []string{}, nil
	}

	var item progressItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewDatabaseError("decode progress", err)
	}
	if item.CollectedIDs == nil {
		return []string{}, nil
	}
	return item.CollectedIDs, nil
}

// Save upserts the user's collected entry ids
func (r *ProgressRepository) Save(ctx context.Context, userID string, entryIDs []string) error {
	item := progressItem{
		PK:           "USER#" + userID,
		SK:           "PROGRESS",
		EntityType:   "PROGRESS",
		UserID:       userID,
		CollectedIDs: entryIDs,
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewInternalError("failed to encode progress").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return apperrors.NewDatabaseError("save progress", err)
	}
	return nil
}
