// Package email sends transactional mail over SMTP.
package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/postforge/postforge/internal/application/subscription/usecases"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// Sender delivers composed messages; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPReceiptNotifier implements usecases.ReceiptNotifier.
type SMTPReceiptNotifier struct {
	config SMTPConfig
	sender Sender
}

var _ usecases.ReceiptNotifier = (*SMTPReceiptNotifier)(nil)

func NewSMTPReceiptNotifier(config SMTPConfig) *SMTPReceiptNotifier {
	return NewSMTPReceiptNotifierWithSender(config, gomail.NewDialer(config.Host, config.Port, config.Username, config.Password))
}

func NewSMTPReceiptNotifierWithSender(config SMTPConfig, sender Sender) *SMTPReceiptNotifier {
	return &SMTPReceiptNotifier{
		config: config,
		sender: sender,
	}
}

func (s *SMTPReceiptNotifier) SendReceipt(ctx context.Context, receipt usecases.Receipt) error {
	if receipt.Email == "" {
		return fmt.Errorf("receipt for invoice %s has no recipient", receipt.InvoiceID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	amount := FormatAmount(receipt.Amount, receipt.Currency)
	paidAt := receipt.PaidAt.UTC().Format("02 Jan 2006 15:04 MST")
	planName := strings.ToUpper(receipt.Plan.String()[:1]) + receipt.Plan.String()[1:]

	subject := fmt.Sprintf("Your PostForge receipt for %s", amount)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment received</h2>
			<p>Thanks for your payment. Your %s plan is active.</p>
			<table>
				<tr><td>Amount</td><td>%s</td></tr>
				<tr><td>Invoice</td><td>%s</td></tr>
				<tr><td>Subscription</td><td>%s</td></tr>
				<tr><td>Paid at</td><td>%s</td></tr>
			</table>
		</body>
		</html>
	`, html.EscapeString(planName), html.EscapeString(amount), html.EscapeString(receipt.InvoiceID),
		html.EscapeString(receipt.SubscriptionID), paidAt)

	plainBody := fmt.Sprintf(`
Payment received

Thanks for your payment. Your %s plan is active.

Amount:       %s
Invoice:      %s
Subscription: %s
Paid at:      %s
	`, planName, amount, receipt.InvoiceID, receipt.SubscriptionID, paidAt)

	return s.sendEmail(receipt.Email, subject, htmlBody, plainBody)
}

func (s *SMTPReceiptNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// FormatAmount renders minor units as "INR 499.00".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%d.%02d", strings.ToUpper(currency), sign, minor/100, minor%100)
}
