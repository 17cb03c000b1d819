package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers short operational alerts (new community input, action
// center digest). Delivery is best-effort: Dispatch never fails the caller.
type Notifier interface {
	Dispatch(ctx context.Context, title, message string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Dispatch(context.Context, string, string) {}

// sendMail is swapped out in tests.
var sendMail = smtp.SendMail

// NotifierOptions configures the delivery channels. A channel with missing
// settings is skipped.
type NotifierOptions struct {
	SlackWebhookURL string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	FromEmail       string
	AlertRecipient  string
	Timeout         time.Duration
}

// EventNotifier fans a notification out to Slack and email.
type EventNotifier struct {
	opts    NotifierOptions
	client  *http.Client
	metrics *Metrics
	logger  *zap.Logger
}

func NewEventNotifier(opts NotifierOptions, metrics *Metrics, logger *zap.Logger) *EventNotifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &EventNotifier{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		metrics: metrics,
		logger:  logger,
	}
}

type channel struct {
	name string
	send func(ctx context.Context, title, message string) error
}

func (n *EventNotifier) channels() []channel {
	var out []channel
	if n.opts.SlackWebhookURL != "" {
		out = append(out, channel{name: "slack", send: n.sendSlack})
	}
	if n.opts.SMTPHost != "" && n.opts.AlertRecipient != "" {
		out = append(out, channel{name: "email", send: n.sendEmail})
	}
	return out
}

// Dispatch sends to every configured channel concurrently and waits for all
// of them. Failures are logged per channel.
func (n *EventNotifier) Dispatch(ctx context.Context, title, message string) {
	channels := n.channels()
	if len(channels) == 0 {
		n.logger.Info("no notification providers configured; skipping alert", zap.String("title", title))
		return
	}

	var wg sync.WaitGroup
	for _, ch := range channels {
		wg.Add(1)
		go func(ch channel) {
			defer wg.Done()
			err := ch.send(ctx, title, message)
			n.metrics.ObserveNotification(ch.name, err)
			if err != nil {
				n.logger.Error("notification failed", zap.String("channel", ch.name), zap.String("title", title), zap.Error(err))
				return
			}
			n.logger.Info("notification sent", zap.String("channel", ch.name), zap.String("title", title))
		}(ch)
	}
	wg.Wait()
}

func (n *EventNotifier) sendSlack(ctx context.Context, title, message string) error {
	body, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", title, message),
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.SlackWebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("slack webhook returned %s", resp.Status)
	}
	return nil
}

func (n *EventNotifier) sendEmail(_ context.Context, title, message string) error {
	msg := []byte("Subject: " + title + "\r\n" +
		"From: " + n.opts.FromEmail + "\r\n" +
		"To: " + n.opts.AlertRecipient + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		message)

	var auth smtp.Auth
	if n.opts.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.opts.SMTPUsername, n.opts.SMTPPassword, n.opts.SMTPHost)
	}

	addr := n.opts.SMTPHost + ":" + n.opts.SMTPPort
	if err := sendMail(addr, auth, n.opts.FromEmail, []string{n.opts.AlertRecipient}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
