package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-verify-mail/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAlerter_PublishesEntryToTopic(t *testing.T) {
	pub := &mockPublisher{}
	var got *sns.PublishInput
	pub.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil)

	a := &Alerter{client: pub, topicARN: "arn:aws:sns:us-east-1:000000000000:audit"}
	e := audit.Entry{ID: "01H", Channel: audit.ChannelSuspicious, Message: "mismatch"}
	require.NoError(t, a.Alert(context.Background(), e))

	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:audit", *got.TopicArn)
	assert.Equal(t, alertSubject, *got.Subject)
	var decoded audit.Entry
	require.NoError(t, json.Unmarshal([]byte(*got.Message), &decoded))
	assert.Equal(t, "mismatch", decoded.Message)
	assert.Equal(t, "suspicious", *got.MessageAttributes["channel"].StringValue)
}

func TestAlerter_WrapsPublishError(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("AuthorizationError"))

	err := (&Alerter{client: pub}).Alert(context.Background(), audit.Entry{})
	assert.ErrorContains(t, err, "sns publish: AuthorizationError")
}
