package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/site-api/internal/domain"
)

// SessionRepo provides typed DynamoDB operations for the sessions table.
type SessionRepo struct {
	client    API
	tableName string
}

func NewSessionRepo(client API, tableName string) *SessionRepo {
	return &SessionRepo{client: client, tableName: tableName}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldSessionID, sessionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	var s domain.Session
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// update applies a SET to an existing session. With a non-nil currentToken the
// write only lands on an enabled session still holding that refresh token.
func (r *SessionRepo) update(ctx context.Context, sessionID string, updates map[string]interface{}, currentToken *string) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	cond := "attribute_exists(" + fieldSessionID + ")"
	if currentToken != nil {
		cond += " AND #en = :enabled AND #rt = :oldrt"
		ue.Names["#en"] = fieldEnable
		ue.Names["#rt"] = fieldRefreshToken
		ue.Values[":enabled"] = &types.AttributeValueMemberBOOL{Value: true}
		ue.Values[":oldrt"] = &types.AttributeValueMemberS{Value: *currentToken}
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldSessionID, sessionID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		if currentToken != nil {
			return fmt.Errorf("session disabled or token already rotated: %w", domain.ErrUnauthorized)
		}
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, map[string]interface{}{fieldEnable: false}, nil)
}

// DisableByAccount disables every session of an account, following query pages.
// All sessions are attempted; the first failure is returned.
func (r *SessionRepo) DisableByAccount(ctx context.Context, accountID string) error {
	var (
		firstErr error
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("account_id-index"),
			KeyConditionExpression: aws.String("account_id = :aid"),
			ProjectionExpression:   aws.String(fieldSessionID),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":aid": &types.AttributeValueMemberS{Value: accountID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return err
		}
		for _, item := range out.Items {
			sidAttr, ok := item[fieldSessionID].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if err := r.Disable(ctx, sidAttr.Value); err != nil {
				slog.WarnContext(ctx, "failed to disable session", "session_id", sidAttr.Value, "account_id", accountID, "err", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return firstErr
		}
		startKey = out.LastEvaluatedKey
	}
}

// GetByRefreshToken looks up a session by its opaque refresh token via GSI.
// Returns ErrUnauthorized (session disabled) when found but inactive.
func (r *SessionRepo) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("refresh_token-index"),
		KeyConditionExpression: aws.String("refresh_token = :rt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rt": &types.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	var s domain.Session
	if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
		return nil, err
	}
	if !s.Enable {
		return nil, fmt.Errorf("session disabled: %w", domain.ErrUnauthorized)
	}
	return &s, nil
}

// RotateRefreshToken swaps oldToken for newToken on an enabled session. Of two
// concurrent rotations of the same token only one lands.
func (r *SessionRepo) RotateRefreshToken(ctx context.Context, sessionID, oldToken, newToken string, newExpiry int64) error {
	return r.update(ctx, sessionID, map[string]interface{}{
		fieldRefreshToken:     newToken,
		fieldRefreshExpiresAt: newExpiry,
	}, &oldToken)
}
