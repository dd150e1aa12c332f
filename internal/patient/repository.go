package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/carepulse/intake-platform/internal/notify"
	"github.com/carepulse/intake-platform/pkg/logging"
)

// ErrNotFound indicates the requested patient does not exist.
var ErrNotFound = errors.New("patient: not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists patients to DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("patient: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("patient: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create assigns a fresh id and server timestamps, then persists the record.
func (s *Store) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if p == nil {
		return nil, errors.New("patient: record cannot be nil")
	}

	stored := *p
	stored.ID = uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	item, err := attributevalue.MarshalMap(stored)
	if err != nil {
		return nil, fmt.Errorf("patient: failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		s.logger.Error("patient create failed", "error", err)
		return nil, fmt.Errorf("patient: failed to persist record: %w", err)
	}
	return &stored, nil
}

// Get fetches a patient by id.
func (s *Store) Get(ctx context.Context, id string) (*Patient, error) {
	if id == "" {
		return nil, errors.New("patient: id cannot be empty")
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		s.logger.Error("patient get failed", "error", err, "id", id)
		return nil, fmt.Errorf("patient: failed to fetch record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var p Patient
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("patient: failed to unmarshal record: %w", err)
	}
	return &p, nil
}

// GetByUserID finds the patient registered for a requesting account.
func (s *Store) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	if userID == "" {
		return nil, errors.New("patient: user id cannot be empty")
	}

	var lastKey map[string]types.AttributeValue
	for {
		page, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.tableName),
			FilterExpression: aws.String("userId = :userId"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":userId": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			s.logger.Error("patient lookup failed", "error", err, "user_id", userID)
			return nil, fmt.Errorf("patient: failed to look up by user: %w", err)
		}

		if len(page.Items) > 0 {
			var p Patient
			if err := attributevalue.UnmarshalMap(page.Items[0], &p); err != nil {
				return nil, fmt.Errorf("patient: failed to unmarshal record: %w", err)
			}
			return &p, nil
		}

		if len(page.LastEvaluatedKey) == 0 {
			return nil, ErrNotFound
		}
		lastKey = page.LastEvaluatedKey
	}
}

// SetIdentificationDocument records the storage key of an uploaded
// identification document on the patient record.
func (s *Store) SetIdentificationDocument(ctx context.Context, id, documentKey string) (*Patient, error) {
	if id == "" {
		return nil, errors.New("patient: id cannot be empty")
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET identificationDocument = :doc, updatedAt = :updatedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":doc":       &types.AttributeValueMemberS{Value: documentKey},
			":updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, ErrNotFound
		}
		s.logger.Error("patient document update failed", "error", err, "id", id)
		return nil, fmt.Errorf("patient: failed to update record: %w", err)
	}

	var p Patient
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, fmt.Errorf("patient: failed to unmarshal updated record: %w", err)
	}
	return &p, nil
}

// Contact implements the notification gateway's recipient directory.
func (s *Store) Contact(ctx context.Context, userID string) (*notify.Contact, error) {
	p, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &notify.Contact{
		Name:  p.Name,
		Phone: p.Phone,
		Email: p.Email,
	}, nil
}
