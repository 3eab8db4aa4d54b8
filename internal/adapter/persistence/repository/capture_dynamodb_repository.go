package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultCapturesTableName = "captures"

type captureItem struct {
	ID           string `dynamodbav:"id"`
	PoleID       string `dynamodbav:"pole_id,omitempty"`
	AssignmentID string `dynamodbav:"assignment_id,omitempty"`
	Status       string `dynamodbav:"status"`

	CustomerName    string `dynamodbav:"customer_name,omitempty"`
	CustomerAddress string `dynamodbav:"customer_address,omitempty"`
	CustomerContact string `dynamodbav:"customer_contact,omitempty"`

	PhotoCount     string   `dynamodbav:"photo_count"`
	RequiredPhotos string   `dynamodbav:"required_photos"`
	MissingFields  []string `dynamodbav:"missing_fields,omitempty"`

	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// CaptureDynamoRepository reads capture records and projects assignment
// state onto them. The capture pipeline owns every other field.
//
// Table requirements:
//   - PK: id (string)

type CaptureDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.ICaptureRepository = (*CaptureDynamoRepository)(nil)

func NewCaptureDynamoRepository(ddb *dynamodb.Client) *CaptureDynamoRepository {
	return &CaptureDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("CAPTURES_TABLE", defaultCapturesTableName),
	}
}

func (r *CaptureDynamoRepository) Get(ctx context.Context, captureID string) (entities.Capture, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: captureID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Capture{}, err
	}
	if len(out.Item) == 0 {
		return entities.Capture{}, nil
	}

	var it captureItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Capture{}, err
	}
	return fromCaptureItem(it), nil
}

func (r *CaptureDynamoRepository) SetAssignment(ctx context.Context, captureID, assignmentID string, status entities.CaptureStatus) (entities.Capture, error) {
	return r.update(ctx, captureID, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #assignment_id = :assignment_id, #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":assignment_id": &types.AttributeValueMemberS{Value: assignmentID},
			":status":        &types.AttributeValueMemberS{Value: string(status)},
			":updated_at":    &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#assignment_id": "assignment_id",
			"#status":        "status",
			"#updated_at":    "updated_at",
		}
		return expr, vals, names
	})
}

func (r *CaptureDynamoRepository) SetStatus(ctx context.Context, captureID string, status entities.CaptureStatus) (entities.Capture, error) {
	return r.update(ctx, captureID, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

func (r *CaptureDynamoRepository) ClearAssignment(ctx context.Context, captureID string) (entities.Capture, error) {
	return r.update(ctx, captureID, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at REMOVE #assignment_id"
		vals := map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(entities.CaptureStatusDraft)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#assignment_id": "assignment_id",
			"#status":        "status",
			"#updated_at":    "updated_at",
		}
		return expr, vals, names
	})
}

func (r *CaptureDynamoRepository) update(
	ctx context.Context,
	id string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.Capture, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	updateExpr, values, names := build(now)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Capture{}, nil
		}
		return entities.Capture{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Capture{}, nil
	}
	var it captureItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Capture{}, err
	}
	return fromCaptureItem(it), nil
}

func fromCaptureItem(it captureItem) entities.Capture {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	photoCount, _ := strconv.Atoi(it.PhotoCount)
	requiredPhotos, _ := strconv.Atoi(it.RequiredPhotos)
	return entities.Capture{
		ID:           it.ID,
		PoleID:       it.PoleID,
		AssignmentID: it.AssignmentID,
		Status:       entities.CaptureStatus(it.Status),
		Customer: entities.Customer{
			Name:    it.CustomerName,
			Address: it.CustomerAddress,
			Contact: it.CustomerContact,
		},
		PhotoCount:     photoCount,
		RequiredPhotos: requiredPhotos,
		MissingFields:  it.MissingFields,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}
