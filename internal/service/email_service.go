package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"lingoclash/internal/auth"
	"lingoclash/internal/events"
	"lingoclash/internal/xp"
)

// EmailService sends level-up milestone notifications via Amazon SES.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates a new email service. With an empty fromEmail the
// service is disabled and every send becomes a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyLevelUps subscribes to XP changes and emails the signed-in user when
// a change crosses a level boundary. Returns the bus unsubscribe function.
func (s *EmailService) NotifyLevelUps(bus *events.Bus, principals *auth.Manager) func() {
	return bus.SubscribeXPChanged(func(e events.XPChanged) {
		newLevel := xp.LevelFromXP(e.Now)
		if xp.LevelFromXP(e.Prev) >= newLevel {
			return
		}

		principal, ok := principals.Principal()
		if !ok || principal.Email == "" {
			return
		}

		// Send off the bus goroutine so slow SES calls never delay
		// event delivery to the other subscribers.
		go func() {
			if err := s.SendLevelUpEmail(context.Background(), principal.Email, principal.Name, newLevel); err != nil {
				log.Printf("Failed to send level-up email: %v", err)
			}
		}()
	})
}

// SendLevelUpEmail sends a congratulations email for reaching a new level.
func (s *EmailService) SendLevelUpEmail(ctx context.Context, toEmail, toName string, level int) error {
	subject := fmt.Sprintf("You reached Level %d on LingoClash!", level)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.level { font-size: 48px; font-weight: bold; color: #2e7d32; text-align: center; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Level Up!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your practice is paying off. You just reached:</p>
			<div class="level">Level %d</div>
			<p>Keep your streak going to climb even higher.</p>
		</div>
		<div class="footer">
			<p>You are receiving this because level-up notifications are enabled on your LingoClash companion.</p>
		</div>
	</div>
</body>
</html>`, toName, level)

	textBody := fmt.Sprintf("Hi %s,\n\nYou just reached Level %d on LingoClash! Keep your streak going to climb even higher.\n", toName, level)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): %s to %s", subject, toEmail)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
