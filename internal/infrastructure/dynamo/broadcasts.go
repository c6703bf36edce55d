package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-push-relay/internal/domain"
)

// BroadcastRepo provides typed DynamoDB operations for the broadcast audit table.
type BroadcastRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBroadcastRepo(client *dynamodb.Client, tableName string) *BroadcastRepo {
	return &BroadcastRepo{client: client, tableName: tableName}
}

func (r *BroadcastRepo) Put(ctx context.Context, b *domain.BroadcastRecord) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal broadcast: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// List returns up to limit audit records, newest first. ULID keys sort by
// creation time, so sorting on the key is sorting on time.
func (r *BroadcastRepo) List(ctx context.Context, limit int32) ([]domain.BroadcastRecord, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var records []domain.BroadcastRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].BroadcastID > records[j].BroadcastID
	})
	return records, nil
}
