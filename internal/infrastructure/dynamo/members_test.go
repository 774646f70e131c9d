package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-verify-mail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct{ mock.Mock }

func (m *mockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.GetItemOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func forUser(id string) interface{} {
	return mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		v, ok := in.Key["user_id"].(*types.AttributeValueMemberN)
		return ok && v.Value == id && *in.TableName == "members" && in.ProjectionExpression != nil
	})
}

func TestMemberRepo_Found(t *testing.T) {
	db := &mockDynamo{}
	db.On("GetItem", mock.Anything, forUser("42")).Return(&dynamodb.GetItemOutput{
		Item: map[string]types.AttributeValue{
			"user_id":      &types.AttributeValueMemberN{Value: "42"},
			"username":     &types.AttributeValueMemberS{Value: "Alice"},
			"email":        &types.AttributeValueMemberS{Value: "alice@chess.example"},
			"verification": &types.AttributeValueMemberS{Value: `{"verified":false,"code":"abc123"}`},
		},
	}, nil)

	m, err := NewMemberRepo(db, "members").Member(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), m.UserID)
	assert.Equal(t, "Alice", m.Username)
	require.NotNil(t, m.Verification)
	assert.Equal(t, `{"verified":false,"code":"abc123"}`, *m.Verification)
}

func TestMemberRepo_NullVerification(t *testing.T) {
	db := &mockDynamo{}
	db.On("GetItem", mock.Anything, forUser("7")).Return(&dynamodb.GetItemOutput{
		Item: map[string]types.AttributeValue{
			"user_id":      &types.AttributeValueMemberN{Value: "7"},
			"username":     &types.AttributeValueMemberS{Value: "bob"},
			"verification": &types.AttributeValueMemberNULL{Value: true},
		},
	}, nil)

	m, err := NewMemberRepo(db, "members").Member(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, m.Verification)
}

func TestMemberRepo_NotFound(t *testing.T) {
	db := &mockDynamo{}
	db.On("GetItem", mock.Anything, forUser("9")).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewMemberRepo(db, "members").Member(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemberRepo_ClientError(t *testing.T) {
	db := &mockDynamo{}
	db.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewMemberRepo(db, "members").Member(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.ErrorContains(t, err, "throttled")
}
