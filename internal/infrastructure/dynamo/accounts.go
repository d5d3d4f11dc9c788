package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/site-api/internal/domain"
)

// AccountRepo provides typed DynamoDB operations for the accounts table.
// PK: email, so uniqueness is enforced by a conditional put.
type AccountRepo struct {
	client    API
	tableName string
	otpTable  string
}

func NewAccountRepo(client API, tableName, otpTable string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName, otpTable: otpTable}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return err
}

// CreateConsuming inserts the account and marks otp consumed in one transaction.
// Neither write is applied when the email exists or the OTP was already used.
func (r *AccountRepo) CreateConsuming(ctx context.Context, a *domain.Account, otp *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(email)"),
			}},
			{Update: consumeOTPUpdate(r.otpTable, otp)},
		},
	})
	if codes := cancellationCodes(err); codes != nil {
		return transactionError(codes, fmt.Errorf("email already registered: %w", domain.ErrConflict))
	}
	return err
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("attribute_exists(email)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return err
}

// DeleteConsuming removes the account and marks otp consumed in one transaction.
func (r *AccountRepo) DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey(fieldEmail, email),
				ConditionExpression: aws.String("attribute_exists(email)"),
			}},
			{Update: consumeOTPUpdate(r.otpTable, otp)},
		},
	})
	if codes := cancellationCodes(err); codes != nil {
		return transactionError(codes, fmt.Errorf("account not found: %w", domain.ErrNotFound))
	}
	return err
}

// transactionError maps the cancellation reasons of an [account write, otp consume]
// transaction. accountErr is returned when the account condition failed.
func transactionError(codes []string, accountErr error) error {
	if len(codes) > 0 && codes[0] == reasonConditionalCheckFailed {
		return accountErr
	}
	if len(codes) > 1 && codes[1] == reasonConditionalCheckFailed {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	return fmt.Errorf("transaction cancelled: %v", codes)
}
