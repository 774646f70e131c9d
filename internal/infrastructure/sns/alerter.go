package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-verify-mail/internal/audit"
	"github.com/go-verify-mail/internal/config"
)

const alertSubject = "Suspicious verification-email activity"

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Alerter publishes suspicious-activity audit entries to an SNS topic,
// where operators subscribe by email or chat webhook.
type Alerter struct {
	client   publisher
	topicARN string
}

func NewAlerter(ctx context.Context, cfg *config.Config) (*Alerter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) { o.BaseEndpoint = aws.String(cfg.AWSEndpointURL) })
	}
	return &Alerter{client: sns.NewFromConfig(awsCfg, opts...), topicARN: cfg.AuditAlertTopicARN}, nil
}

func (a *Alerter) Alert(ctx context.Context, e audit.Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	_, err = a.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.topicARN),
		Subject:  aws.String(alertSubject),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"channel": {DataType: aws.String("String"), StringValue: aws.String(string(e.Channel))},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
