package repository

import (
	"context"
	"errors"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultAssignmentsTableName = "assignments"
	assignmentsCaptureIDIndex   = "capture_id-index"
	assignmentsAssignedToIndex  = "assigned_to-index"
)

type assignmentItem struct {
	ID        string `dynamodbav:"id"`
	CaptureID string `dynamodbav:"capture_id"`
	PoleID    string `dynamodbav:"pole_id,omitempty"`

	CustomerName    string `dynamodbav:"customer_name,omitempty"`
	CustomerAddress string `dynamodbav:"customer_address,omitempty"`
	CustomerContact string `dynamodbav:"customer_contact,omitempty"`

	AssignedTo string `dynamodbav:"assigned_to"`
	AssignedBy string `dynamodbav:"assigned_by,omitempty"`
	Priority   string `dynamodbav:"priority"`
	Status     string `dynamodbav:"status"`

	AssignedAt    string `dynamodbav:"assigned_at"`
	AcceptedAt    string `dynamodbav:"accepted_at,omitempty"`
	StartedAt     string `dynamodbav:"started_at,omitempty"`
	CompletedAt   string `dynamodbav:"completed_at,omitempty"`
	ScheduledDate string `dynamodbav:"scheduled_date,omitempty"`

	Notes string `dynamodbav:"notes,omitempty"`

	UpdatedAt string `dynamodbav:"updated_at"`
}

// AssignmentDynamoRepository persists Assignment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: capture_id-index (PK: capture_id)
//   - GSI: assigned_to-index (PK: assigned_to)

type AssignmentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IAssignmentRepository = (*AssignmentDynamoRepository)(nil)

func NewAssignmentDynamoRepository(ddb *dynamodb.Client) *AssignmentDynamoRepository {
	return &AssignmentDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ASSIGNMENTS_TABLE", defaultAssignmentsTableName),
	}
}

func (r *AssignmentDynamoRepository) Create(ctx context.Context, a entities.Assignment) (entities.Assignment, error) {
	it := toAssignmentItem(a)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Assignment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Assignment{}, err
	}
	return a, nil
}

func (r *AssignmentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Assignment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Assignment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Assignment{}, nil
	}

	var it assignmentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Assignment{}, err
	}
	return fromAssignmentItem(it), nil
}

func (r *AssignmentDynamoRepository) GetByCaptureID(ctx context.Context, captureID string) (entities.Assignment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(assignmentsCaptureIDIndex),
		KeyConditionExpression: aws.String("capture_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: captureID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Assignment{}, err
	}
	if len(out.Items) == 0 {
		return entities.Assignment{}, nil
	}

	var it assignmentItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Assignment{}, err
	}
	return fromAssignmentItem(it), nil
}

func (r *AssignmentDynamoRepository) ListByTechnician(ctx context.Context, technicianID string) ([]entities.Assignment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(assignmentsAssignedToIndex),
		KeyConditionExpression: aws.String("assigned_to = :tid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid": &types.AttributeValueMemberS{Value: technicianID},
		},
	})
	if err != nil {
		return nil, err
	}
	return unmarshalAssignments(out.Items)
}

func (r *AssignmentDynamoRepository) ListAll(ctx context.Context) ([]entities.Assignment, error) {
	var items []entities.Assignment
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		page, err := unmarshalAssignments(out.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return items, nil
}

func (r *AssignmentDynamoRepository) Update(ctx context.Context, a entities.Assignment) (entities.Assignment, error) {
	it := toAssignmentItem(a)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Assignment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Assignment{}, nil
		}
		return entities.Assignment{}, err
	}
	return a, nil
}

func (r *AssignmentDynamoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	return err
}

func unmarshalAssignments(raw []map[string]types.AttributeValue) ([]entities.Assignment, error) {
	items := make([]entities.Assignment, 0, len(raw))
	for _, rawItem := range raw {
		var it assignmentItem
		if err := attributevalue.UnmarshalMap(rawItem, &it); err != nil {
			return nil, err
		}
		items = append(items, fromAssignmentItem(it))
	}
	return items, nil
}

func toAssignmentItem(a entities.Assignment) assignmentItem {
	return assignmentItem{
		ID:              a.ID,
		CaptureID:       a.CaptureID,
		PoleID:          a.PoleID,
		CustomerName:    a.Customer.Name,
		CustomerAddress: a.Customer.Address,
		CustomerContact: a.Customer.Contact,
		AssignedTo:      a.AssignedTo,
		AssignedBy:      a.AssignedBy,
		Priority:        string(a.Priority),
		Status:          string(a.Status),
		AssignedAt:      a.AssignedAt.UTC().Format(time.RFC3339Nano),
		AcceptedAt:      formatOptionalTime(a.AcceptedAt),
		StartedAt:       formatOptionalTime(a.StartedAt),
		CompletedAt:     formatOptionalTime(a.CompletedAt),
		ScheduledDate:   formatOptionalTime(a.ScheduledDate),
		Notes:           a.Notes,
		UpdatedAt:       a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromAssignmentItem(it assignmentItem) entities.Assignment {
	assignedAt, _ := time.Parse(time.RFC3339Nano, it.AssignedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Assignment{
		ID:        it.ID,
		CaptureID: it.CaptureID,
		PoleID:    it.PoleID,
		Customer: entities.Customer{
			Name:    it.CustomerName,
			Address: it.CustomerAddress,
			Contact: it.CustomerContact,
		},
		AssignedTo:    it.AssignedTo,
		AssignedBy:    it.AssignedBy,
		Priority:      entities.Priority(it.Priority),
		Status:        entities.AssignmentStatus(it.Status),
		AssignedAt:    assignedAt,
		AcceptedAt:    parseOptionalTime(it.AcceptedAt),
		StartedAt:     parseOptionalTime(it.StartedAt),
		CompletedAt:   parseOptionalTime(it.CompletedAt),
		ScheduledDate: parseOptionalTime(it.ScheduledDate),
		Notes:         it.Notes,
		UpdatedAt:     updatedAt,
	}
}
