package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"claims_manager/internal/domain"
)

type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
)

// NotificationService delivers claim-outcome messages to policyholders
// through mockable transports. Delivery runs on a small worker pool; the
// workflow engine only ever enqueues.
type NotificationService struct {
	emailService EmailService
	smsService   SMSService
	messageQueue chan NotificationMessage
	workers      int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	logger       *slog.Logger
}

type NotificationMessage struct {
	Type      NotificationType
	Recipient string
	Subject   string
	Message   string
	Metadata  map[string]string
	CreatedAt time.Time
}

type EmailService interface {
	SendEmail(to, subject, body string) error
}

type SMSService interface {
	SendSMS(to, message string) error
}

func NewNotificationService(
	emailService EmailService,
	smsService SMSService,
	workers int,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}

	service := &NotificationService{
		emailService: emailService,
		smsService:   smsService,
		messageQueue: make(chan NotificationMessage, 1000),
		workers:      workers,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	service.startWorkers()

	return service
}

// NotifyStatusChange queues an outcome notification for the claim's
// policyholder. Satisfies workflow.Notifier.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, claim *domain.Claim) {
	var subject, message string

	switch claim.Status {
	case domain.StatusApproved:
		subject = "Claim Approved"
		message = fmt.Sprintf("Your %s claim for %.2f has been approved and forwarded for settlement.", claim.Type, claim.Amount)
	case domain.StatusRejected:
		subject = "Claim Rejected"
		message = fmt.Sprintf("Your %s claim for %.2f has been rejected. See the claim notes for details.", claim.Type, claim.Amount)
	case domain.StatusSettled:
		subject = "Claim Settled"
		message = fmt.Sprintf("Your %s claim for %.2f has been settled. Payment is on its way.", claim.Type, claim.Amount)
	default:
		subject = "Claim Update"
		message = fmt.Sprintf("Your %s claim is now %s.", claim.Type, claim.Status)
	}

	notification := NotificationMessage{
		Type:      NotificationEmail,
		Recipient: claim.Policyholder.ID,
		Subject:   subject,
		Message:   message,
		Metadata: map[string]string{
			"claim_id":   claim.ID,
			"claim_type": claim.Type,
			"status":     string(claim.Status),
		},
		CreatedAt: time.Now(),
	}

	select {
	case s.messageQueue <- notification:
		s.logger.Info("Notification queued",
			slog.String("recipient", notification.Recipient),
			slog.String("claim_id", claim.ID),
			slog.String("status", string(claim.Status)))
	default:
		s.logger.Warn("Notification queue full, dropping message",
			slog.String("claim_id", claim.ID))
	}
}

func (s *NotificationService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *NotificationService) worker(id int) {
	defer s.wg.Done()

	s.logger.Info("Notification worker started", slog.Int("worker_id", id))

	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, id)
		case <-s.shutdownChan:
			s.logger.Info("Notification worker stopping", slog.Int("worker_id", id))
			return
		}
	}
}

func (s *NotificationService) processNotification(msg NotificationMessage, workerID int) {
	startTime := time.Now()
	var err error

	switch msg.Type {
	case NotificationEmail:
		err = s.emailService.SendEmail(msg.Recipient, msg.Subject, msg.Message)
	case NotificationSMS:
		err = s.smsService.SendSMS(msg.Recipient, msg.Message)
	default:
		err = fmt.Errorf("unknown notification type: %s", msg.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Failed to send notification",
			slog.String("type", string(msg.Type)),
			slog.String("recipient", msg.Recipient),
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
			slog.Duration("duration", duration))
	} else {
		s.logger.Info("Notification sent successfully",
			slog.String("type", string(msg.Type)),
			slog.String("recipient", msg.Recipient),
			slog.Int("worker_id", workerID),
			slog.Duration("duration", duration))
	}
}

func (s *NotificationService) Shutdown(ctx context.Context) error {
	close(s.shutdownChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []struct {
		To      string
		Subject string
		Body    string
	}
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, struct {
		To      string
		Subject string
		Body    string
	}{to, subject, body})
	return nil
}

type MockSMSService struct {
	mu      sync.Mutex
	SentSMS []struct {
		To      string
		Message string
	}
}

func (m *MockSMSService) SendSMS(to, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentSMS = append(m.SentSMS, struct {
		To      string
		Message string
	}{to, message})
	return nil
}
