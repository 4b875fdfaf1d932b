package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier tells the customer about booking status changes. Implementations
// must not block the caller for network I/O.
type Notifier interface {
	BookingStatusChanged(ctx context.Context, b *models.Booking, from *models.BookingStatus)
}

type NoopNotifier struct{}

func (NoopNotifier) BookingStatusChanged(context.Context, *models.Booking, *models.BookingStatus) {}

type NotificationSettings struct {
	OrgName         string
	FromEmail       string
	FromPhone       string
	SendgridSandbox bool
}

// NotificationService sends e-mail through SendGrid and SMS through Twilio.
// Either client may be nil, in which case that channel is skipped.
type NotificationService struct {
	settings       NotificationSettings
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

func NewNotificationService(
	settings NotificationSettings,
	sendgridClient *sendgrid.Client,
	twilioClient *twilio.RestClient,
) *NotificationService {
	return &NotificationService{
		settings:       settings,
		sendgridClient: sendgridClient,
		twilioClient:   twilioClient,
	}
}

const bookingStatusEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>%s</h2>
  <p>Dear %s,</p>
  <p>%s</p>
  <p>Booking reference: <strong>%s</strong><br>Status: <strong>%s</strong></p>
  <p style="color:#888;font-size:12px;">Sent %s</p>
</body>
</html>`

func (n *NotificationService) BookingStatusChanged(ctx context.Context, b *models.Booking, from *models.BookingStatus) {
	subject, body := bookingStatusMessage(b)
	if subject == "" {
		return
	}
	snapshot := *b
	go n.send(&snapshot, subject, body)
}

func (n *NotificationService) send(b *models.Booking, subject, body string) {
	logger := utils.Logger.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"status":     b.Status,
	})

	// ---------- Twilio SMS ----------
	if n.twilioClient != nil && utils.IsE164(b.CustomerPhone) {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(b.CustomerPhone)
		params.SetFrom(n.settings.FromPhone)
		params.SetBody(subject + " :: " + body)
		if _, smsErr := n.twilioClient.Api.CreateMessage(params); smsErr != nil {
			logger.WithError(smsErr).Warn("Failed to send booking SMS")
		}
	} else {
		logger.Debug("No Twilio client or phone is not E.164, skipping booking SMS")
	}

	// ---------- SendGrid Email ----------
	if n.sendgridClient != nil && utils.IsValidEmailSyntax(b.CustomerEmail) {
		from := mail.NewEmail(n.settings.OrgName, n.settings.FromEmail)
		to := mail.NewEmail(b.CustomerName, b.CustomerEmail)
		htmlBody := fmt.Sprintf(
			bookingStatusEmailHTML,
			subject,
			b.CustomerName,
			body,
			b.ID.String(),
			b.Status,
			time.Now().UTC().Format(time.RFC1123Z),
		)
		msg := mail.NewSingleEmail(from, subject, to, body, htmlBody)
		if n.settings.SendgridSandbox {
			ms := mail.NewMailSettings()
			ms.SetSandboxMode(mail.NewSetting(true))
			msg.MailSettings = ms
		}
		if _, sgErr := n.sendgridClient.Send(msg); sgErr != nil {
			logger.WithError(sgErr).Warn("Booking email send failure")
		}
	} else {
		logger.Debug("No SendGrid client or unusable address, skipping booking email")
	}
}

// bookingStatusMessage returns the customer-facing subject and body, or empty
// strings for statuses the customer is not told about.
func bookingStatusMessage(b *models.Booking) (string, string) {
	switch b.Status {
	case models.BookingStatusHoldRequested:
		return "Your unit hold request was received",
			"We have received your hold request and a manager will review it shortly."
	case models.BookingStatusHoldConfirmed:
		return "Your unit hold is confirmed",
			"Your hold on the unit has been confirmed."
	case models.BookingStatusBookingConfirmed:
		return "Your booking is confirmed",
			"Your booking has been approved. Our team will contact you about the payment schedule."
	case models.BookingStatusBooked:
		return "Your unit is booked",
			"Congratulations, the unit is now booked in your name."
	case models.BookingStatusCancelled:
		reason := "No reason was given."
		if b.CancellationReason != nil && *b.CancellationReason != "" {
			reason = "Reason: " + *b.CancellationReason
		}
		return "Your booking was cancelled",
			"Your booking has been cancelled. " + reason
	case models.BookingStatusRefunded:
		return "Your booking was refunded",
			"Your booking has been closed and the payments made will be refunded."
	}
	return "", ""
}
