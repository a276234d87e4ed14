package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/groblegark/dashd/internal/events"
)

var watchTopic string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream engine events from the bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL := os.Getenv("DASHD_NATS_URL")
		if natsURL == "" {
			return fmt.Errorf("DASHD_NATS_URL not set (watch requires the event bus)")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(natsURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(watchTopic)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-ch:
				if !ok {
					return nil
				}
				fmt.Println(formatEvent(ev, time.Now()))
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchTopic, "topic", "dashd.>", "event topic to subscribe to (NATS wildcards allowed)")
}

// formatEvent renders one bus event as a single output line: local time,
// topic, compacted payload. Payloads that are not valid JSON pass through
// unchanged.
func formatEvent(ev events.RawEvent, at time.Time) string {
	data := bytes.TrimSpace(ev.Data)
	var buf bytes.Buffer
	if json.Compact(&buf, data) == nil {
		data = buf.Bytes()
	}
	return fmt.Sprintf("%s  %s  %s", at.Format("15:04:05"), ev.Topic, data)
}
