package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alfredjeanlab/refdata/internal/events"
	"github.com/alfredjeanlab/refdata/internal/ui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch record mutations as they happen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			natsURL = os.Getenv("REFDATA_NATS_URL")
		}
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}

		if natsURL != "" {
			return watchNATS(ctx, natsURL)
		}
		return watchPoll(ctx, interval)
	},
}

// watchNATS streams mutation events from NATS and pretty-prints each one.
func watchNATS(ctx context.Context, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	created, cancelCreated, err := sub.Subscribe(events.TopicRecordCreated)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancelCreated()

	updated, cancelUpdated, err := sub.Subscribe(events.TopicRecordUpdated)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancelUpdated()

	deleted, cancelDeleted, err := sub.Subscribe(events.TopicRecordDeleted)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancelDeleted()

	fmt.Println("watching for record mutations (Ctrl-C to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-created:
			var ev events.RecordCreated
			if json.Unmarshal(data, &ev) == nil {
				fmt.Printf("%s created %s %s %s\n",
					eventStamp(ev.Version),
					ui.RenderType(viewField(ev.Item["type"])),
					ui.RenderMuted(viewField(ev.Item["id"])),
					viewField(ev.Item["name"]),
				)
			}
		case data := <-updated:
			var ev events.RecordUpdated
			if json.Unmarshal(data, &ev) == nil {
				fmt.Printf("%s updated %s %s %s (changed: %v)\n",
					eventStamp(ev.Version),
					ui.RenderType(viewField(ev.Item["type"])),
					ui.RenderMuted(viewField(ev.Item["id"])),
					viewField(ev.Item["name"]),
					ev.Changed,
				)
			}
		case data := <-deleted:
			var ev events.RecordDeleted
			if json.Unmarshal(data, &ev) == nil {
				fmt.Printf("%s deleted %s %s\n",
					eventStamp(ev.Version),
					ui.RenderType(ev.Type),
					ui.RenderMuted(fmt.Sprintf("%d", ev.ID)),
				)
			}
		}
	}
}

// watchPoll falls back to polling the version endpoint when NATS is not
// configured, reporting each observed change.
func watchPoll(ctx context.Context, interval time.Duration) error {
	last, err := registry.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("polling every %s, version %d (Ctrl-C to stop)\n", interval, last)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			version, err := registry.Version(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if version != last {
				fmt.Printf("%s registry changed (%d mutation(s))\n",
					eventStamp(version), version-last)
				last = version
			}
		}
	}
}

func eventStamp(version int64) string {
	return ui.RenderMuted(fmt.Sprintf("[%s v%d]", time.Now().Format("15:04:05"), version))
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS URL for event streaming")
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval when NATS is unavailable")
}
