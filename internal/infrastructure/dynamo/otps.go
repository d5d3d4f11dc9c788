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

// OTPRepo manages one-time passcode records.
// PK: email, SK: otp_id. Records are never deleted; consumption is a flag.
type OTPRepo struct {
	client    API
	tableName string
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Latest returns the most recently issued record for email.
func (r *OTPRepo) Latest(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
		ScanIndexForward: aws.Bool(false),
		ConsistentRead:   aws.Bool(true),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Consume flips consumed from false to true. A record that is already consumed
// fails the condition and yields ErrInvalidCode.
func (r *OTPRepo) Consume(ctx context.Context, o *domain.OTPRecord) error {
	u := consumeOTPUpdate(r.tableName, o)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 u.TableName,
		Key:                       u.Key,
		UpdateExpression:          u.UpdateExpression,
		ConditionExpression:       u.ConditionExpression,
		ExpressionAttributeNames:  u.ExpressionAttributeNames,
		ExpressionAttributeValues: u.ExpressionAttributeValues,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	return err
}

// consumeOTPUpdate builds the conditional consumed=false -> true update shared by
// Consume and the account transactions.
func consumeOTPUpdate(table string, o *domain.OTPRecord) *types.Update {
	return &types.Update{
		TableName:           aws.String(table),
		Key:                 compositeKey(fieldEmail, o.Email, fieldOTPID, o.OTPID),
		UpdateExpression:    aws.String("SET #c = :t"),
		ConditionExpression: aws.String("attribute_exists(otp_id) AND #c = :f"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldConsumed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	}
}
