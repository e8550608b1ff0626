package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

// profileItem is the DynamoDB item for a phone binding
type profileItem struct {
	PK           string `dynamodbav:"PK"` // PHONE#<phone>
	SK           string `dynamodbav:"SK"` // PROFILE
	EntityType   string `dynamodbav:"EntityType"`
	Phone        string `dynamodbav:"Phone"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
}

// ProfileRepository implements ports.ProfileRepository on DynamoDB
type ProfileRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProfileRepository creates a DynamoDB-backed profile repository
func NewProfileRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{client: client, tableName: tableName, logger: logger}
}

// GetByPhone returns the profile bound to a phone number
func (r *ProfileRepository) GetByPhone(ctx context.Context, phone string) (ports.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "PHONE#" + phone},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	})
	if err != nil {
		return ports.Profile{}, apperrors.NewDatabaseError("get profile", err)
	}
	if out.Item == nil {
		return ports.Profile{}, apperrors.NewNotFoundError("profile")
	}

	var item profileItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return ports.Profile{}, apperrors.NewDatabaseError("decode profile", err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return ports.Profile{
		Phone:        item.Phone,
		PasswordHash: item.PasswordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Create stores a new binding; an already-bound phone is a conflict
func (r *ProfileRepository) Create(ctx context.Context, profile ports.Profile) error {
	item := profileItem{
		PK:           "PHONE#" + profile.Phone,
		SK:           "PROFILE",
		EntityType:   "PROFILE",
		Phone:        profile.Phone,
		PasswordHash: profile.PasswordHash,
		CreatedAt:    profile.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    profile.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewInternalError("failed to encode profile").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return apperrors.NewConflictError("phone is already bound")
		}
		return apperrors.NewDatabaseError("create profile", err)
	}
	return nil
}
