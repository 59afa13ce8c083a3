// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ailibrary/prompts-backend/internal/config"
	"github.com/ailibrary/prompts-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{db: db, config: config}
}

// SendPurchaseConfirmation emails the buyer after settlement. Failures are
// logged, never propagated into the checkout path.
func (s *NotificationService) SendPurchaseConfirmation(purchase *models.Purchase, product *models.Product, buyer *models.User) {
	data := map[string]interface{}{
		"BuyerName":    buyer.Username,
		"ProductTitle": product.Title,
		"Amount":       fmt.Sprintf("%.2f %s", purchase.Amount, purchase.Currency),
		"LibraryURL":   fmt.Sprintf("%s/purchases", s.config.Frontend.BaseURL),
	}

	subject := "Purchase Confirmation - " + product.Title
	tmpl := s.getEmailTemplate("purchase_confirmation")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render purchase confirmation email")
		return
	}

	if err := s.sendEmail(buyer.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("purchase_id", purchase.ID).
			Error("Failed to send purchase confirmation email")
	}
}

// SendSaleNotification emails the seller their net amount for a settled sale.
func (s *NotificationService) SendSaleNotification(purchase *models.Purchase, product *models.Product) {
	var seller models.User
	if err := s.db.First(&seller, "id = ?", purchase.SellerID).Error; err != nil {
		logrus.WithError(err).WithField("seller_id", purchase.SellerID).
			Error("Failed to load seller for sale notification")
		return
	}

	data := map[string]interface{}{
		"SellerName":   seller.Username,
		"ProductTitle": product.Title,
		"SellerAmount": fmt.Sprintf("%.2f %s", purchase.SellerAmount, purchase.Currency),
		"DashboardURL": fmt.Sprintf("%s/seller/dashboard", s.config.Frontend.BaseURL),
	}

	subject := "You made a sale - " + product.Title
	tmpl := s.getEmailTemplate("sale_notification")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render sale notification email")
		return
	}

	if err := s.sendEmail(seller.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("purchase_id", purchase.ID).
			Error("Failed to send sale notification email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	return e.Send(addr, auth)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"purchase_confirmation": {
			Subject: "Purchase Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your purchase, {{.BuyerName}}!</h2>
	<p>You now have full access to "{{.ProductTitle}}".</p>
	<p>Amount paid: {{.Amount}}</p>
	<a href="{{.LibraryURL}}">Open your prompt library</a>
	<p>Best regards,<br>AI Library Prompts Team</p>
</body>
</html>`,
		},
		"sale_notification": {
			Subject: "You made a sale",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Congratulations {{.SellerName}}!</h2>
	<p>"{{.ProductTitle}}" just sold. Your earnings: {{.SellerAmount}}.</p>
	<a href="{{.DashboardURL}}">View your dashboard</a>
	<p>Best regards,<br>AI Library Prompts Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
