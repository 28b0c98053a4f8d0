package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends the notification emails the services fire off the request
// path. EmailService is the SES implementation.
type Mailer interface {
	IsEnabled() bool
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
	SendLinkRequestNotification(ctx context.Context, toEmail, childNickname, familyCode string) error
	SendApprovalNotification(ctx context.Context, toEmail, childNickname, familyCode string) error
}

// EmailService handles sending notification emails via Amazon SES
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service. When fromEmail is empty the
// service is disabled and every send becomes a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
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
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendApprovalNotification tells a parent their child's profile has been
// linked, sent to the recovery email collected at approval time.
func (s *EmailService) SendApprovalNotification(ctx context.Context, toEmail, childNickname, familyCode string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): approval notification to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s의 프로필이 연결되었어요", childNickname)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h2>%s의 프로필이 연결되었어요</h2>
		<p>가족 코드 <strong>%s</strong>에 %s의 프로필이 추가되었습니다.</p>
		<p>이제 아이 기기에서 자동 로그인이 활성화됩니다.</p>
		<p style="font-size: 12px; color: #666;">이 메일은 발신 전용입니다.</p>
	</div>
</body>
</html>
`, childNickname, familyCode, childNickname)

	textBody := fmt.Sprintf(`%s의 프로필이 연결되었어요

가족 코드 %s에 %s의 프로필이 추가되었습니다.
이제 아이 기기에서 자동 로그인이 활성화됩니다.

이 메일은 발신 전용입니다.
`, childNickname, familyCode, childNickname)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendLinkRequestNotification tells the owning parent a child device just
// submitted a link request against their family code.
func (s *EmailService) SendLinkRequestNotification(ctx context.Context, toEmail, childNickname, familyCode string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): link request notification to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s의 연결 요청이 도착했어요", childNickname)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h2>%s의 연결 요청이 도착했어요</h2>
		<p>가족 코드 <strong>%s</strong>로 새 연결 요청이 접수되었습니다.</p>
		<p>앱에서 요청을 확인하고 승인하거나 거절할 수 있어요.</p>
		<p style="font-size: 12px; color: #666;">이 메일은 발신 전용입니다.</p>
	</div>
</body>
</html>
`, childNickname, familyCode)

	textBody := fmt.Sprintf(`%s의 연결 요청이 도착했어요

가족 코드 %s로 새 연결 요청이 접수되었습니다.
앱에서 요청을 확인하고 승인하거나 거절할 수 있어요.

이 메일은 발신 전용입니다.
`, childNickname, familyCode)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail sends a welcome email to a newly registered parent
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "개미의 선물 상자에 오신 것을 환영해요"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h2>환영해요, %s님!</h2>
		<p>가족 그룹을 만들고 초대 코드를 아이에게 알려주면 연결 요청을 받을 수 있어요.</p>
		<p style="font-size: 12px; color: #666;">이 메일은 발신 전용입니다.</p>
	</div>
</body>
</html>
`, toName)

	textBody := fmt.Sprintf(`환영해요, %s님!

가족 그룹을 만들고 초대 코드를 아이에게 알려주면 연결 요청을 받을 수 있어요.

이 메일은 발신 전용입니다.
`, toName)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message id: %s", *result.MessageId)
	}
	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
