package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the subset of *sesv2.Client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends messages through Amazon SES from a fixed source address.
type SESSender struct {
	client SESAPI
	source string
}

func NewSESSender(client SESAPI, source string) *SESSender {
	return &SESSender{client: client, source: source}
}

func (s *SESSender) Send(ctx context.Context, m Message) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.source),
		Destination:      &types.Destination{ToAddresses: []string{m.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(m.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	return err
}
