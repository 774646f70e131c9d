package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-verify-mail/internal/config"
)

// Bootstrap creates the members table if it doesn't already exist.
// Only useful against LocalStack; in production the table belongs to the account service.
func Bootstrap(ctx context.Context, log *slog.Logger, client *dynamodb.Client, tables config.DynamoTables) {
	createTable(ctx, log, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Members),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeHash},
		},
	})
}

func createTable(ctx context.Context, log *slog.Logger, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			log.Warn("could not create table", "table", *input.TableName, "err", err)
		}
		return
	}
	log.Info("created table", "table", *input.TableName)
}
