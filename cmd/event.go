package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/role-assignment/internal/core/events"
	"github.com/frahmantamala/role-assignment/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Inspect the assignment event bus: publish sample events through the audit log subscriber`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample assignment event",
	Long:  `Publish a sample assignment event through the audit log subscriber to check log output`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishSampleEvent(cmd.Context(), args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventAssignmentID int64
	eventActorID      int64
	eventData         string
)

func publishSampleEvent(ctx context.Context, eventType string) error {
	switch eventType {
	case events.AssignmentCreated, events.AssignmentUpdated, events.AssignmentDeleted:
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	events.SubscribeAuditLog(bus, lg)

	event := events.NewAssignmentEvent(eventType, eventAssignmentID, eventActorID, map[string]interface{}{
		"message": eventData,
		"source":  "cli-command",
	})

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.ID)
	if err := bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventAssignmentID, "assignment-id", 1, "assignment id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor-id", 1, "acting user id carried by the event")
	publishEventCmd.Flags().StringVar(&eventData, "data", "sample event", "Event data message")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
