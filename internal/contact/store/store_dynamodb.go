package store

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

	"registro/internal/contact/models"
	"registro/pkg/platform/sentinel"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem keeps the attribute names of the existing table.
type dynamoItem struct {
	ID        string `dynamodbav:"id"`
	Nombres   string `dynamodbav:"nombres"`
	Apellido  string `dynamodbav:"apellido"`
	Email     string `dynamodbav:"email"`
	Celular   string `dynamodbav:"celular"`
	Interes   string `dynamodbav:"interes"`
	CreatedAt string `dynamodbav:"createdAt"`
}

func toDynamoItem(c *models.Contact) dynamoItem {
	return dynamoItem{
		ID:        c.ID.String(),
		Nombres:   c.Names,
		Apellido:  c.Surname,
		Email:     c.Email,
		Celular:   c.Phone,
		Interes:   c.Interest,
		CreatedAt: models.FormatTimestamp(c.CreatedAt),
	}
}

func (i dynamoItem) toContact() (*models.Contact, error) {
	id, err := uuid.Parse(i.ID)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse createdAt: %w", err)
	}
	return &models.Contact{
		ID:        id,
		Names:     i.Nombres,
		Surname:   i.Apellido,
		Email:     i.Email,
		Phone:     i.Celular,
		Interest:  i.Interes,
		CreatedAt: createdAt,
	}, nil
}

// DynamoStore writes contacts to a DynamoDB table keyed by "id".
type DynamoStore struct {
	client DynamoAPI
	table  string
}

func NewDynamo(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Insert is a conditional put: an existing id is reported as a conflict.
func (s *DynamoStore) Insert(ctx context.Context, contact *models.Contact) error {
	item, err := attributevalue.MarshalMap(toDynamoItem(contact))
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("put contact: %w", err)
	}
	return nil
}

// Count scans the whole table with Select=COUNT, following pagination.
func (s *DynamoStore) Count(ctx context.Context) (int, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
		Select:    types.SelectCount,
	})
	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("scan contacts: %w", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

func (s *DynamoStore) Get(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id.String()}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("contact %s: %w", id, sentinel.ErrNotFound)
	}
	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal contact: %w", err)
	}
	return item.toContact()
}

// EnsureDynamoTable creates an on-demand table keyed by "id" if it is missing
// and waits until it is active. Used against DynamoDB Local.
func EnsureDynamoTable(ctx context.Context, client *dynamodb.Client, table string) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, 30*time.Second); err != nil {
		return fmt.Errorf("wait for table %s: %w", table, err)
	}
	return nil
}
