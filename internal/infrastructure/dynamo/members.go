package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-verify-mail/internal/domain"
)

// DynamoDB attribute names on the members table.
const (
	attrUserID       = "user_id"
	attrUsername     = "username"
	attrEmail        = "email"
	attrVerification = "verification"
)

// itemGetter is the slice of *dynamodb.Client the repo needs.
type itemGetter interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// MemberRepo reads member records. It is read-only: account rows are owned
// by the registration and confirmation flows.
type MemberRepo struct {
	client    itemGetter
	tableName string
}

func NewMemberRepo(client itemGetter, tableName string) *MemberRepo {
	return &MemberRepo{client: client, tableName: tableName}
}

// Member fetches username, email and the raw verification blob for userID.
// Returns an error wrapping domain.ErrNotFound when no row exists.
func (r *MemberRepo) Member(ctx context.Context, userID int64) (*domain.Member, error) {
	expr, names := projection(attrUserID, attrUsername, attrEmail, attrVerification)
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      numKey(attrUserID, userID),
		ProjectionExpression:     aws.String(expr),
		ExpressionAttributeNames: names,
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get member %d: %w", userID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("member %d: %w", userID, domain.ErrNotFound)
	}
	var m domain.Member
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, fmt.Errorf("unmarshal member %d: %w", userID, err)
	}
	return &m, nil
}
