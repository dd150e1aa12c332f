package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carepulse/intake-platform/pkg/logging"
)

// ErrNotFound indicates the requested appointment ID does not exist.
var ErrNotFound = errors.New("appointment: not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists appointments to DynamoDB. It performs no optimistic-lock
// checks: concurrent updates to the same id resolve last-write-wins, the
// store being the sole arbiter of consistency.
type Store struct {
	client    dynamoAPI
	tableName string
	tracer    trace.Tracer
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("appointment: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointment: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		tracer:    otel.Tracer("carepulse.internal.appointment.store"),
		logger:    logger,
	}
}

// Create assigns a fresh id and server timestamps, then persists the record.
// The caller decides the initial status; an empty status defaults to pending.
func (s *Store) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a == nil {
		return nil, errors.New("appointment: record cannot be nil")
	}

	ctx, span := s.tracer.Start(ctx, "appointment.store.create")
	defer span.End()

	stored := *a
	stored.ID = uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	span.SetAttributes(attribute.String("carepulse.appointment_id", stored.ID))

	item, err := attributevalue.MarshalMap(stored)
	if err != nil {
		return nil, fmt.Errorf("appointment: failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		s.logger.Error("appointment create failed", "error", err)
		return nil, fmt.Errorf("appointment: failed to persist record: %w", err)
	}
	return &stored, nil
}

// Get fetches a single appointment by id.
func (s *Store) Get(ctx context.Context, id string) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointment: id cannot be empty")
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		s.logger.Error("appointment get failed", "error", err, "id", id)
		return nil, fmt.Errorf("appointment: failed to fetch record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var a Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("appointment: failed to unmarshal record: %w", err)
	}
	return &a, nil
}

// Update merges the set fields of patch into the stored record and returns
// the updated record. Returns ErrNotFound when the id is unknown.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointment: id cannot be empty")
	}

	ctx, span := s.tracer.Start(ctx, "appointment.store.update")
	defer span.End()
	span.SetAttributes(
		attribute.String("carepulse.appointment_id", id),
		attribute.String("carepulse.target_status", string(patch.Status)),
	)

	sets := []string{"updatedAt = :updatedAt"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}

	if patch.Status != "" {
		// "status" is a DynamoDB reserved word.
		sets = append(sets, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(patch.Status)}
	}
	if patch.PrimaryPhysician != "" {
		sets = append(sets, "primaryPhysician = :primaryPhysician")
		values[":primaryPhysician"] = &types.AttributeValueMemberS{Value: patch.PrimaryPhysician}
	}
	if !patch.Schedule.IsZero() {
		// So is "schedule".
		sets = append(sets, "#schedule = :schedule")
		names["#schedule"] = "schedule"
		values[":schedule"] = &types.AttributeValueMemberS{Value: patch.Schedule.UTC().Format(time.RFC3339Nano)}
	}
	if patch.Reason != "" {
		sets = append(sets, "reason = :reason")
		values[":reason"] = &types.AttributeValueMemberS{Value: patch.Reason}
	}
	if patch.Note != "" {
		sets = append(sets, "note = :note")
		values[":note"] = &types.AttributeValueMemberS{Value: patch.Note}
	}
	if patch.CancellationReason != "" {
		sets = append(sets, "cancellationReason = :cancellationReason")
		values[":cancellationReason"] = &types.AttributeValueMemberS{Value: patch.CancellationReason}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, ErrNotFound
		}
		s.logger.Error("appointment update failed", "error", err, "id", id)
		return nil, fmt.Errorf("appointment: failed to update record: %w", err)
	}

	var a Appointment
	if err := attributevalue.UnmarshalMap(out.Attributes, &a); err != nil {
		return nil, fmt.Errorf("appointment: failed to unmarshal updated record: %w", err)
	}
	return &a, nil
}

// List returns every appointment ordered by creation time descending. The
// scan follows DynamoDB's pagination; page size itself is the store's
// concern, not this layer's.
func (s *Store) List(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	var lastKey map[string]types.AttributeValue

	for {
		page, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			s.logger.Error("appointment list failed", "error", err)
			return nil, fmt.Errorf("appointment: failed to list records: %w", err)
		}

		var batch []Appointment
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("appointment: failed to unmarshal records: %w", err)
		}
		out = append(out, batch...)

		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = page.LastEvaluatedKey
	}

	sort.SliceStable(out, func(i, j int) bool {
		return laterCreated(out[i].CreatedAt, out[j].CreatedAt)
	})
	if out == nil {
		out = []Appointment{}
	}
	return out, nil
}

// laterCreated orders RFC3339Nano timestamps newest-first, falling back to a
// lexicographic comparison for values that fail to parse.
func laterCreated(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA == nil && errB == nil {
		return ta.After(tb)
	}
	return a > b
}
