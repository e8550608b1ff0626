// Package dynamodb implements the persistence ports on a single
// DynamoDB table, selected with STORE_DRIVER=dynamodb. Items share the
// layout PK=USER#<user> / SK=<kind>#..., profiles keyed by phone.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

// markItem is the DynamoDB item for one mark. The composite sort key
// carries the (entry, address) uniqueness used for idempotent upserts.
type markItem struct {
	PK         string `dynamodbav:"PK"` // USER#<userID>
	SK         string `dynamodbav:"SK"` // MARK#<entryID>#<address>
	EntityType string `dynamodbav:"EntityType"`
	MarkID     string `dynamodbav:"MarkID"`
	UserID     string `dynamodbav:"UserID"`
	EntryID    string `dynamodbav:"EntryID"`
	Address    string `dynamodbav:"Address"`
	RecordedAt string `dynamodbav:"RecordedAt"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func markKey(userID, entryID, address string) (string, string) {
	return "USER#" + userID, fmt.Sprintf("MARK#%s#%s", entryID, address)
}

func (i markItem) toRecord() ports.MarkRecord {
	recordedAt, _ := time.Parse(time.RFC3339Nano, i.RecordedAt)
	createdAt, _ := time.Parse(time.RFC3339Nano, i.CreatedAt)
	return ports.MarkRecord{
		ID:         i.MarkID,
		UserID:     i.UserID,
		EntryID:    i.EntryID,
		Address:    i.Address,
		RecordedAt: recordedAt,
		CreatedAt:  createdAt,
	}
}

// MarkRepository implements ports.MarkRepository on DynamoDB
type MarkRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewMarkRepository creates a DynamoDB-backed mark repository
func NewMarkRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *MarkRepository {
	return &MarkRepository{client: client, tableName: tableName, logger: logger}
}

// List returns the user's marks newest first
func (r *MarkRepository) List(ctx context.Context, userID, entryID string) ([]ports.MarkRecord, error) {
	prefix := "MARK#"
	if entryID != "" {
		prefix = "MARK#" + entryID + "#"
	}

	keyCond := expression.Key("PK").Equal(expression.Value("USER#" + userID)).
		And(expression.Key("SK").BeginsWith(prefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mark query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list marks", err)
	}

	var items []markItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, apperrors.NewDatabaseError("decode marks", err)
	}

	records := make([]ports.MarkRecord, 0, len(items))
	for _, item := range items {
		records = append(records, item.toRecord())
	}
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].RecordedAt.After(records[b].RecordedAt)
	})
	return records, nil
}

// Upsert inserts the mark or returns the existing record for a
// duplicate (user, entry, address).
func (r *MarkRepository) Upsert(ctx context.Context, rec ports.MarkRecord) (ports.MarkRecord, error) {
	pk, sk := markKey(rec.UserID, rec.EntryID, rec.Address)
	item := markItem{
		PK:         pk,
		SK:         sk,
		EntityType: "MARK",
		MarkID:     rec.ID,
		UserID:     rec.UserID,
		EntryID:    rec.EntryID,
		Address:    rec.Address,
		RecordedAt: rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if item.MarkID == "" {
		item.MarkID = uuid.New().String()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return ports.MarkRecord{}, apperrors.NewInternalError("failed to encode mark").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return r.getExisting(ctx, pk, sk)
		}
		return ports.MarkRecord{}, apperrors.NewDatabaseError("put mark", err)
	}

	return item.toRecord(), nil
}

// BatchUpsert applies upsert semantics per item. Each item needs its
// own condition check, so the batch is a loop over single puts.
func (r *MarkRepository) BatchUpsert(ctx context.Context, recs []ports.MarkRecord) ([]ports.MarkRecord, error) {
	records := make([]ports.MarkRecord, 0, len(recs))
	for _, rec := range recs {
		saved, err := r.Upsert(ctx, rec)
		if err != nil {
			return nil, err
		}
		records = append(records, saved)
	}
	return records, nil
}

// Delete removes the user's mark by id. Mark ids are not part of the
// key schema, so the user's items are scanned for the id first; the
// per-user mark count is bounded, keeping that cheap.
func (r *MarkRepository) Delete(ctx context.Context, userID, markID string) error {
	records, err := r.List(ctx, userID, "")
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.ID != markID {
			continue
		}
		pk, sk := markKey(userID, rec.EntryID, rec.Address)
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: pk},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		})
		if err != nil {
			return apperrors.NewDatabaseError("delete mark", err)
		}
		return nil
	}

	return apperrors.NewNotFoundError("mark")
}

func (r *MarkRepository) getExisting(ctx context.Context, pk, sk string) (ports.MarkRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return ports.MarkRecord{}, apperrors.NewDatabaseError("get mark", err)
	}
	if out.Item == nil {
		return ports.MarkRecord{}, apperrors.NewNotFoundError("mark")
	}

	var item markItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return ports.MarkRecord{}, apperrors.NewDatabaseError("decode mark", err)
	}
	return item.toRecord(), nil
}
