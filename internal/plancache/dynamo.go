package plancache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"meal-planner/internal/meal"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoBackend.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoBackend stores cached plans in a DynamoDB table keyed by CacheKey.
// When a TTL is configured the ExpiresAt attribute holds epoch seconds and
// can be enabled as the table's TTL attribute.
type DynamoBackend struct {
	client    DynamoAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

type dynamoItem struct {
	CacheKey  string `dynamodbav:"CacheKey"`
	Plan      string `dynamodbav:"Plan"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt,omitempty"`
}

// NewDynamoBackend creates a backend writing to tableName.
func NewDynamoBackend(client DynamoAPI, tableName string, ttl time.Duration) *DynamoBackend {
	return &DynamoBackend{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Get implements Backend.
func (b *DynamoBackend) Get(ctx context.Context, key string) (meal.MealPlan, bool, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"CacheKey": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return meal.MealPlan{}, false, fmt.Errorf("failed to get cached plan: %w", err)
	}

	if out.Item == nil {
		return meal.MealPlan{}, false, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return meal.MealPlan{}, false, fmt.Errorf("failed to unmarshal cache item: %w", err)
	}

	// DynamoDB removes expired items lazily.
	if item.ExpiresAt > 0 && b.now().Unix() >= item.ExpiresAt {
		return meal.MealPlan{}, false, nil
	}

	var plan meal.MealPlan
	if err := json.Unmarshal([]byte(item.Plan), &plan); err != nil {
		return meal.MealPlan{}, false, fmt.Errorf("failed to unmarshal cached plan: %w", err)
	}
	return plan, true, nil
}

// Put implements Backend.
func (b *DynamoBackend) Put(ctx context.Context, key string, plan meal.MealPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	now := b.now().UTC()
	item := dynamoItem{
		CacheKey:  key,
		Plan:      string(data),
		CreatedAt: now.Format(time.RFC3339),
	}
	if b.ttl > 0 {
		item.ExpiresAt = now.Add(b.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cache item: %w", err)
	}

	if _, err := b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to put cached plan: %w", err)
	}
	return nil
}
