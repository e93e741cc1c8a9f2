// Package notify delivers job lifecycle notifications to external
// systems. Notification failures are logged and never affect job state.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gridsight/gridsight/internal/domain"
	"github.com/gridsight/gridsight/internal/logger"
)

// WebhookNotifier posts terminal job records to a configured URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *logger.Logger
}

// NewWebhookNotifier creates a webhook notifier. An empty URL disables
// delivery.
// Parameters:
//   - url: webhook endpoint; empty disables notifications.
//   - timeout: per-request timeout.
//   - log: logger instance.
// Returns:
//   - *WebhookNotifier: initialized notifier.
func NewWebhookNotifier(url string, timeout time.Duration, log *logger.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)
	return &WebhookNotifier{client: client, url: url, logger: log}
}

// JobFinished posts the terminal job record as JSON. Errors are logged
// and swallowed; a dead webhook must not fail a finished import.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: terminal job record to deliver.
// Returns: none.
func (n *WebhookNotifier) JobFinished(ctx context.Context, job *domain.ImportJob) {
	if n.url == "" {
		return
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(job).
		Post(n.url)
	if err != nil {
		n.logger.WithFields(logger.Fields{
			logger.FieldJobID: job.ID,
		}).WithError(err).Warn("Failed to deliver job webhook")
		return
	}
	if resp.IsError() {
		n.logger.WithFields(logger.Fields{
			logger.FieldJobID:  job.ID,
			logger.FieldStatus: resp.StatusCode(),
		}).Warn("Job webhook returned an error status")
	}
}
