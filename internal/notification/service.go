package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"debmarket/internal/logger"
	"debmarket/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

type Job struct {
	To      string    `json:"to"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// Send queues a notification for background delivery. Delivery failures
// never surface to the caller; the worker retries and parks dead jobs.
func (s *Service) Send(ctx context.Context, to, notifType, subject, body string) error {
	job := Job{
		To:      to,
		Type:    notifType,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", to, err)
		return err
	}

	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))
	logger.Infof("Notification queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending notification to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, string(data))
			logger.Infof("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
			metrics.RecordNotification(job.Type, "failed")
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent successfully to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func formatBRL(amountCents int64) string {
	return fmt.Sprintf("R$ %.2f", float64(amountCents)/100)
}

// SendDepositConfirmed tells the user their PIX or card deposit settled and
// the wallet was credited.
func (s *Service) SendDepositConfirmed(ctx context.Context, email string, amountCents int64) error {
	subject := "Deposit Confirmed - " + formatBRL(amountCents)
	body := fmt.Sprintf(`Hello,

Your deposit of %s has been confirmed and credited to your wallet.

The balance is available for investment right away.

- DebMarket Team`, formatBRL(amountCents))

	return s.Send(ctx, email, "deposit_confirmed", subject, body)
}

func (s *Service) SendInvestmentConfirmation(ctx context.Context, email, offeringName string, amountCents int64) error {
	subject := "Investment Confirmed - " + offeringName
	body := fmt.Sprintf(`Hello,

Your investment of %s in %s has been confirmed.

You can follow it on your portfolio page.

- DebMarket Team`, formatBRL(amountCents), offeringName)

	return s.Send(ctx, email, "investment_confirmed", subject, body)
}

func (s *Service) SendWithdrawalRequested(ctx context.Context, email string, amountCents int64) error {
	subject := "Withdrawal Requested - " + formatBRL(amountCents)
	body := fmt.Sprintf(`Hello,

We received your withdrawal request of %s. The transfer to your PIX key
is being processed and usually completes within one business day.

- DebMarket Team`, formatBRL(amountCents))

	return s.Send(ctx, email, "withdrawal_requested", subject, body)
}
