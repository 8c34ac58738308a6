package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"propertypay-backend/internal/domain"
)

type emailService struct {
	apiKey   string
	from     string
	fromName string
}

func NewEmailService(apiKey, from, fromName string) EmailService {
	return &emailService{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.from)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendPaymentReceipt(ctx context.Context, email, name, reference string, amount domain.Amount) error {
	subject := "Payment received"
	plainText := fmt.Sprintf("Hello %s,\n\nWe received your payment of %s (reference %s).\n\nThank you.", name, amount.String(), reference)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Payment Received</h2>
				<p>Hello %s,</p>
				<p>We received your payment of <strong>%s</strong> (reference <strong>%s</strong>).</p>
				<p>Thank you.</p>
			</body>
		</html>
	`, name, amount.String(), reference)

	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendPaymentFailure(ctx context.Context, email, name, reference, reason string) error {
	subject := "Payment failed"
	plainText := fmt.Sprintf("Hello %s,\n\nYour payment (reference %s) did not go through.", name, reference)
	if reason != "" {
		plainText += fmt.Sprintf("\n\nReason: %s", reason)
	}
	plainText += "\n\nPlease try again or use a different payment method."
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Payment Failed</h2>
				<p>Hello %s,</p>
				<p>Your payment (reference <strong>%s</strong>) did not go through.</p>
				<p>Please try again or use a different payment method.</p>
			</body>
		</html>
	`, name, reference)

	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendPaymentReminder(ctx context.Context, email, name string, amount domain.Amount, dueDate time.Time) error {
	subject := "Upcoming rent payment"
	due := dueDate.Format("2 January 2006")
	plainText := fmt.Sprintf("Hello %s,\n\nYour rent payment of %s is due on %s.", name, amount.String(), due)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Upcoming Rent Payment</h2>
				<p>Hello %s,</p>
				<p>Your rent payment of <strong>%s</strong> is due on <strong>%s</strong>.</p>
			</body>
		</html>
	`, name, amount.String(), due)

	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendRefundNotification(ctx context.Context, email, name string, amount domain.Amount, reference string) error {
	subject := "Refund on its way"
	plainText := fmt.Sprintf("Hello %s,\n\nA refund of %s (reference %s) is being processed to your account.", name, amount.String(), reference)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Refund Processing</h2>
				<p>Hello %s,</p>
				<p>A refund of <strong>%s</strong> (reference <strong>%s</strong>) is being processed to your account.</p>
			</body>
		</html>
	`, name, amount.String(), reference)

	return s.send(email, name, subject, plainText, htmlContent)
}
