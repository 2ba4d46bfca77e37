package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

// Config holds the settings for the operational mailer
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	OpsEmail  string
}

// ResendNotifier mails operational reports through Resend
type ResendNotifier struct {
	client *resend.Client
	config *Config
}

// NewResendNotifier creates a new Resend-backed notifier
func NewResendNotifier(config *Config) (*ResendNotifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if config.OpsEmail == "" {
		return nil, fmt.Errorf("ops email is required")
	}

	return &ResendNotifier{
		client: resend.NewClient(config.APIKey),
		config: config,
	}, nil
}

// SendMigrationReport mails the operations address a summary of a migration
// run that left failed tenant schemas behind.
func (n *ResendNotifier) SendMigrationReport(ctx context.Context, summary *domain.MigrationSummary) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.config.FromName, n.config.FromEmail),
		To:      []string{n.config.OpsEmail},
		Subject: fmt.Sprintf("Migration run: %d tenant schema(s) failed", summary.Failed),
		Html:    MigrationReportTemplate(summary),
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send migration report: %w", err)
	}

	return nil
}
