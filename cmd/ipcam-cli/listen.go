package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/ipcam"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/subscription"
)

func newListenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Subscribe to device events and print them",
		Long: `Subscribe to the device's SOAP event notifications and print every event
until interrupted. The device posts events to a local callback listener, so
the listen address must be reachable from the device.`,
		Args: cobra.NoArgs,
		RunE: runListen,
	}

	cmd.Flags().String("listen-ip", "", "Callback address the device posts to (default: LAN address)")
	cmd.Flags().Int("listen-port", subscription.DefaultPort, "Callback port")
	cmd.Flags().StringSlice("topics", nil, "Only deliver these event types")
	cmd.Flags().Duration("lifetime", subscription.DefaultTimeout, "Requested subscription lifetime")
	cmd.Flags().Bool("auto-renew", true, "Renew the subscription before it lapses")
	cmd.Flags().Int("max-events", 0, "Maximum events per notification (0 = device default)")
	cmd.Flags().String("start-record", "", "Replay events from this log record id")

	return cmd
}

func runListen(cmd *cobra.Command, args []string) error {
	config, err := clientConfig()
	if err != nil {
		return err
	}

	listenIP, _ := cmd.Flags().GetString("listen-ip")
	listenPort, _ := cmd.Flags().GetInt("listen-port")
	topics, _ := cmd.Flags().GetStringSlice("topics")
	lifetime, _ := cmd.Flags().GetDuration("lifetime")
	autoRenew, _ := cmd.Flags().GetBool("auto-renew")
	maxEvents, _ := cmd.Flags().GetInt("max-events")
	startRecord, _ := cmd.Flags().GetString("start-record")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device, err := ipcam.New(ctx, ipcam.Config{Client: config, Logger: logger})
	if err != nil {
		return err
	}

	sub, err := device.Events().Subscribe(ctx, subscription.SubscribeOptions{
		RequestedTimeout: lifetime,
		AutoRenew:        autoRenew,
		ListenerIP:       listenIP,
		ListenerPort:     listenPort,
		Topics:           topics,
		MaximumNumber:    maxEvents,
		StartRecordID:    startRecord,
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		subscription.UnsubscribeAll(shutdownCtx)
	}()

	logger.Info("subscribed",
		"subscription_id", sub.ID(),
		"timeout", sub.Timeout(),
		"callback", sub.ListenerAddress().CallbackURL(sub.RouteKey()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		return sub.Events().Close()
	})

	g.Go(func() error {
		out := cmd.OutOrStdout()
		for {
			event, err := sub.Events().Get(gctx)
			if errors.Is(err, events.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
			printEvent(out, event)
		}
	})

	return g.Wait()
}

func printEvent(out io.Writer, event *events.Event) {
	ts := "-"
	if event.HasTimestamp() {
		ts = event.Timestamp.Format(time.RFC3339)
	}
	fmt.Fprintf(out, "%s  %-24s id=%s", ts, event.Name, event.ID)
	for _, key := range slices.Sorted(maps.Keys(event.Data)) {
		fmt.Fprintf(out, " %s=%s", key, event.Data[key])
	}
	fmt.Fprintln(out)
}
