// Where: internal/reconciler/aws_clients.go
// What: AWS SDK adapters for Lambda, EventBridge, SNS, and S3.
// Why: Map internal reconciler types to SDK types.
package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
)

type awsFunctionClient struct {
	client *lambda.Client
}

func (c awsFunctionClient) AddPermission(ctx context.Context, input GrantInput) error {
	if c.client == nil {
		return fmt.Errorf("lambda client is nil")
	}
	_, err := c.client.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(input.FunctionName),
		StatementId:  aws.String(input.StatementID),
		Action:       aws.String(input.Action),
		Principal:    aws.String(input.Principal),
	})
	if err != nil && isConflict(err) {
		return fmt.Errorf("%s: %w", input.StatementID, ErrGrantExists)
	}
	return err
}

// isConflict reports whether the provider rejected the call because an
// identical resource already exists.
func isConflict(err error) bool {
	var conflict *lambdatypes.ResourceConflictException
	if errors.As(err, &conflict) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceConflictException"
}

type awsEventsClient struct {
	client *eventbridge.Client
}

func (c awsEventsClient) PutRule(ctx context.Context, input RuleInput) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("eventbridge client is nil")
	}
	awsInput := &eventbridge.PutRuleInput{
		Name: aws.String(input.Name),
	}
	if input.ScheduleExpression != "" {
		awsInput.ScheduleExpression = aws.String(input.ScheduleExpression)
	}
	if input.EventPattern != "" {
		awsInput.EventPattern = aws.String(input.EventPattern)
	}
	resp, err := c.client.PutRule(ctx, awsInput)
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.RuleArn), nil
}

func (c awsEventsClient) PutTargets(ctx context.Context, input TargetInput) error {
	if c.client == nil {
		return fmt.Errorf("eventbridge client is nil")
	}
	_, err := c.client.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule: aws.String(input.Rule),
		Targets: []eventbridgetypes.Target{{
			Id:  aws.String(input.TargetID),
			Arn: aws.String(input.TargetArn),
			InputTransformer: &eventbridgetypes.InputTransformer{
				InputPathsMap: input.InputPathsMap,
				InputTemplate: aws.String(input.InputTemplate),
			},
		}},
	})
	return err
}

type awsTopicsClient struct {
	client *sns.Client
}

func (c awsTopicsClient) CreateTopic(ctx context.Context, name string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("sns client is nil")
	}
	resp, err := c.client.CreateTopic(ctx, &sns.CreateTopicInput{
		Name: aws.String(name),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.TopicArn), nil
}

func (c awsTopicsClient) Subscribe(ctx context.Context, topicArn string, endpoint string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("sns client is nil")
	}
	resp, err := c.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn:              aws.String(topicArn),
		Protocol:              aws.String("lambda"),
		Endpoint:              aws.String(endpoint),
		ReturnSubscriptionArn: true,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.SubscriptionArn), nil
}

type awsStorageClient struct {
	client *s3.Client
}

func (c awsStorageClient) PutBucketNotification(ctx context.Context, input NotificationInput) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	events := make([]s3types.Event, 0, len(input.Events))
	for _, event := range input.Events {
		events = append(events, s3types.Event(event))
	}

	entry := s3types.LambdaFunctionConfiguration{
		LambdaFunctionArn: aws.String(input.FunctionArn),
		Events:            events,
	}
	if filter := buildKeyFilter(input.Prefix, input.Suffix); filter != nil {
		entry.Filter = filter
	}

	// The configuration below is the bucket's whole configuration after this
	// call: entries installed by anyone else are not carried over.
	_, err := c.client.PutBucketNotificationConfiguration(ctx, &s3.PutBucketNotificationConfigurationInput{
		Bucket: aws.String(input.Bucket),
		NotificationConfiguration: &s3types.NotificationConfiguration{
			LambdaFunctionConfigurations: []s3types.LambdaFunctionConfiguration{entry},
		},
	})
	return err
}

func buildKeyFilter(prefix, suffix string) *s3types.NotificationConfigurationFilter {
	var rules []s3types.FilterRule
	if prefix != "" {
		rules = append(rules, s3types.FilterRule{
			Name:  s3types.FilterRuleNamePrefix,
			Value: aws.String(prefix),
		})
	}
	if suffix != "" {
		rules = append(rules, s3types.FilterRule{
			Name:  s3types.FilterRuleNameSuffix,
			Value: aws.String(suffix),
		})
	}
	if len(rules) == 0 {
		return nil
	}
	return &s3types.NotificationConfigurationFilter{
		Key: &s3types.S3KeyFilter{FilterRules: rules},
	}
}
