package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"fitclub/internal/logger"
	"fitclub/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "fitclub:emails"
	failedQueueKey = "fitclub:emails:failed"

	maxAttempts = 3
	popTimeout  = 2 * time.Second
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type SMTPConfig struct {
	From     string
	FromName string
	Host     string
	Port     string
	User     string
	Pass     string
}

// Service queues emails in redis and delivers them from Start.
type Service struct {
	redis      *redis.Client
	smtp       SMTPConfig
	send       func(Job) error
	retryDelay time.Duration
	// backoff is the pause after a queue read fails for a reason other
	// than an empty queue.
	backoff time.Duration
}

func New(client *redis.Client, cfg SMTPConfig) *Service {
	s := &Service{
		redis:      client,
		smtp:       cfg,
		retryDelay: 5 * time.Second,
		backoff:    popTimeout,
	}
	s.send = s.sendSMTP
	return s
}

func (s *Service) Enqueue(ctx context.Context, job Job) error {
	job.Tries = 0
	if job.Created.IsZero() {
		job.Created = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		metrics.RecordEmail(job.Type, "queue_failed")
		return fmt.Errorf("queue email to %s: %w", job.To, err)
	}

	metrics.RecordEmail(job.Type, "queued")
	logger.Debug("email queued", "type", job.Type, "to", job.To)
	return nil
}

// Start delivers queued emails until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return
		}
		logger.Warn("email queue unavailable", "error", err, "backoff", s.backoff)
		select {
		case <-ctx.Done():
		case <-time.After(s.backoff):
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("dropping malformed email job", "error", err)
		return
	}

	job.Tries++
	if err := s.send(job); err != nil {
		s.retry(ctx, job, err)
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "type", job.Type, "to", job.To, "attempt", job.Tries)
	s.refreshQueueLength(ctx)
}

func (s *Service) retry(ctx context.Context, job Job, sendErr error) {
	logger.Warn("email delivery failed", "to", job.To, "attempt", job.Tries, "error", sendErr)

	if job.Tries >= maxAttempts {
		s.saveFailed(job, sendErr)
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}

	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	// requeue even when ctx is done so the job survives shutdown
	if err := s.redis.LPush(context.Background(), queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to requeue email", "to", job.To, "error", err)
	}
}

// FailedJob is what the failed queue holds.
type FailedJob struct {
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

func (s *Service) saveFailed(job Job, sendErr error) {
	metrics.RecordEmail(job.Type, "failed")

	data, err := json.Marshal(FailedJob{Job: job, Error: sendErr.Error(), FailedAt: time.Now()})
	if err != nil {
		logger.Error("failed to encode failed email", "to", job.To, "error", err)
		return
	}
	if err := s.redis.LPush(context.Background(), failedQueueKey, string(data)).Err(); err != nil {
		logger.Error("failed to store failed email", "to", job.To, "error", err)
		return
	}
	logger.Error("email moved to failed queue", "to", job.To, "attempts", job.Tries)
}

func (s *Service) sendSMTP(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.smtp.FromName, s.smtp.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtp.User != "" && s.smtp.Pass != "" {
		auth = smtp.PlainAuth("", s.smtp.User, s.smtp.Pass, s.smtp.Host)
	}

	return smtp.SendMail(s.smtp.Host+":"+s.smtp.Port, auth, s.smtp.From, []string{job.To}, []byte(message))
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) refreshQueueLength(ctx context.Context) {
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))
}
