package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/httpclient"
)

func newPullCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Follow the device log",
		Long: `Open a device log channel and print its events until interrupted.
Unlike listen, pull needs no callback listener: it long-polls the device.`,
		Args: cobra.NoArgs,
		RunE: runPull,
	}

	cmd.Flags().String("include", "new", "Events to start from: new, all or -<seconds>")
	cmd.Flags().StringSlice("filter", nil, "Only deliver these event types")
	cmd.Flags().Duration("poll", 30*time.Second, "Long-poll timeout per request")

	return cmd
}

func runPull(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	include, _ := cmd.Flags().GetString("include")
	filter, _ := cmd.Flags().GetStringSlice("filter")
	poll, _ := cmd.Flags().GetDuration("poll")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := client.PullLog(ctx, httpclient.PullConfig{
		LogSubscribeOptions: httpclient.LogSubscribeOptions{
			Include: include,
			Filter:  filter,
		},
		PollTimeout: poll,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			logger.Warn("failed to close log channel", "error", err)
		}
	}()

	out := cmd.OutOrStdout()
	errs := stream.Errors()
	for {
		select {
		case event, ok := <-stream.Events():
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%s  %-24s id=%d %v\n",
				event.Time().Format(time.RFC3339), event.Event, event.ID, event.Params)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("log pull failed", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
