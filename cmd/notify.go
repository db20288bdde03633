package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/jamlabs/reimbursement-service/internal/core/events"
	"github.com/jamlabs/reimbursement-service/internal/mailer"
	"github.com/jamlabs/reimbursement-service/pkg/logger"
)

var notifyRecipient string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a test email through the configured mailer",
	Long:  `Publish a test notification event and deliver it through the configured mailer endpoint. Useful as a smoke test for the email pipeline.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		lg := logger.LoggerWrapper()

		eventBus := events.NewEventBus(lg)
		client := mailer.NewClient(mailer.Config{
			URL:     cfg.Mailer.URL,
			Timeout: cfg.Mailer.Timeout,
		}, lg)
		mailer.NewEventHandler(client, lg).RegisterEventHandlers(eventBus)

		lg.Info("sending test notification", "mailer", client.String(), "recipient", notifyRecipient)

		ev := events.NewNotificationRequestedEvent(notifyRecipient,
			"Reimbursement service test notification",
			"This is a test notification from the reimbursement service.")
		if err := eventBus.PublishSync(context.Background(), ev); err != nil {
			log.Fatalf("failed to publish test notification: %v", err)
		}
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyRecipient, "recipient", "test@mail.com", "Recipient address for the test email")
}
