package mailer

import (
	"fmt"
	"strings"

	"github.com/swiftcart-dev/swiftcart-api/config"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"gopkg.in/gomail.v2"
)

// Sender is the notification capability the order engine and auth flows use.
// Order notifications are best-effort: callers dispatch them in the background
// and only log failures.
type Sender interface {
	SendOTP(email, otp string) error
	SendOrderConfirmation(order *models.Order) error
	SendOrderStatusUpdate(order *models.Order) error
	SendOrderCancellation(order *models.Order) error
}

// Mailer sends over SMTP. Construct once at startup and pass by reference;
// there is deliberately no package-level transporter.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.SMTP) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   from,
	}
}

func (m *Mailer) send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("SwiftCart <%s>", m.from))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) SendOTP(email, otp string) error {
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2>SwiftCart Verification Code</h2>
			<p>Your OTP is:</p>
			<div style="font-size: 24px; font-weight: bold;">%s</div>
			<p>This OTP is valid for 10 minutes.</p>
		</div>`, otp)
	return m.send(email, "Your OTP Code", html)
}

func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	method := "Cash on Delivery"
	if order.PaymentMethod == models.PaymentMethodCard {
		method = "Online Payment (Card)"
	}
	html := fmt.Sprintf(`
		<h1>Order Confirmation #%d</h1>
		<p>Thank you for your order, %s!</p>
		<p><strong>Payment Method:</strong> %s</p>
		<h2>Order Details</h2>
		<ul>%s</ul>
		<p><strong>Total:</strong> ₹%.2f</p>`,
		order.ID, order.FirstName, method, itemsHTML(order.Items), order.TotalPrice)
	return m.send(order.Email, fmt.Sprintf("Order Confirmation #%d", order.ID), html)
}

func (m *Mailer) SendOrderStatusUpdate(order *models.Order) error {
	html := fmt.Sprintf(`
		<h1>Order Update #%d</h1>
		<p>Your order is now <strong>%s</strong>.</p>
		<h2>Order Details</h2>
		<ul>%s</ul>
		<p><strong>Total:</strong> ₹%.2f</p>`,
		order.ID, order.Status, itemsHTML(order.Items), order.TotalPrice)
	return m.send(order.Email, fmt.Sprintf("Order Update #%d", order.ID), html)
}

func (m *Mailer) SendOrderCancellation(order *models.Order) error {
	refundBlock := "<p>This was a Cash on Delivery order, so no payment was processed.</p>"
	if order.RefundID != "" {
		refundBlock = fmt.Sprintf(`
			<h2>Refund Details</h2>
			<p><strong>Refund ID:</strong> %s</p>
			<p><strong>Amount Refunded:</strong> ₹%.2f</p>
			<p>The refund will be processed to your original payment method within 5-10 business days.</p>`,
			order.RefundID, order.RefundAmount)
	}
	html := fmt.Sprintf(`
		<h1>Order Cancellation #%d</h1>
		<p>Your order has been successfully cancelled.</p>
		%s
		<h2>Order Details</h2>
		<ul>%s</ul>
		<p><strong>Original Order Total:</strong> ₹%.2f</p>
		<p>If you have any questions, please contact our customer support.</p>`,
		order.ID, refundBlock, itemsHTML(order.Items), order.TotalPrice)
	return m.send(order.Email, fmt.Sprintf("Order Cancellation #%d", order.ID), html)
}

func itemsHTML(items []models.OrderItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "<li>%s x %d - ₹%.2f</li>", item.Name, item.Qty, item.Price*float64(item.Qty))
	}
	return b.String()
}
