package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"enable": false})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "enable"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"refresh_token":      "tok",
		"enable":             true,
		"refresh_expires_at": int64(10),
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "enable", ue1.Names["#f0"])
	assert.Equal(t, "refresh_expires_at", ue1.Names["#f1"])
	assert.Equal(t, "refresh_token", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"consumed": true})
	require.NoError(t, err)
	boolVal, isBool := ue.Values[":v0"].(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCancellationCodes(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String(reasonConditionalCheckFailed)},
		},
	})
	assert.Equal(t, []string{"None", reasonConditionalCheckFailed}, cancellationCodes(err))
	assert.Nil(t, cancellationCodes(errors.New("boom")))
}

func TestIsConditionFailed(t *testing.T) {
	assert.True(t, isConditionFailed(&types.ConditionalCheckFailedException{}))
	assert.False(t, isConditionFailed(errors.New("boom")))
}
