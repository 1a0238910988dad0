// Package email is the thin outbound-mail boundary. The rest of the
// system only sees the Sender interface.
package email

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"kintree/internal/config"
)

type Sender interface {
	SendInvitation(ctx context.Context, to, treeName, code string) error
	SendVerification(ctx context.Context, to, code string) error
}

// New returns the SES sender, or the no-op sender when email is disabled.
func New(ctx context.Context, cfg config.EmailConfig, logger *slog.Logger) (Sender, error) {
	if cfg.Disabled {
		return NoopSender{logger: logger.With("component", "email")}, nil
	}
	return NewSESSender(ctx, cfg)
}

// SESSender delivers through AWS SES v2.
type SESSender struct {
	client *sesv2.Client
	sender string
}

func NewSESSender(ctx context.Context, cfg config.EmailConfig) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SESSender{
		client: sesv2.NewFromConfig(awsCfg),
		sender: cfg.Sender,
	}, nil
}

func (s *SESSender) SendInvitation(ctx context.Context, to, treeName, code string) error {
	subject := fmt.Sprintf("You have been invited to the family tree %q", treeName)
	body := fmt.Sprintf(
		"You have been invited to join the family tree %q.\n\n"+
			"Use this invitation code to accept: %s\n\n"+
			"The invitation expires in 7 days.\n", treeName, code)
	return s.send(ctx, to, subject, body)
}

func (s *SESSender) SendVerification(ctx context.Context, to, code string) error {
	subject := "Verify your email address"
	body := fmt.Sprintf("Your verification code is: %s\n", code)
	return s.send(ctx, to, subject, body)
}

func (s *SESSender) send(ctx context.Context, to, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &s.sender,
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body:    &types.Body{Text: &types.Content{Data: &body}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// NoopSender logs instead of sending. Default in development.
type NoopSender struct {
	logger *slog.Logger
}

func (n NoopSender) SendInvitation(_ context.Context, to, treeName, code string) error {
	n.logger.Info("email disabled, skipping invitation", "to", to, "tree", treeName, "code", code)
	return nil
}

func (n NoopSender) SendVerification(_ context.Context, to, code string) error {
	n.logger.Info("email disabled, skipping verification", "to", to, "code", code)
	return nil
}
