package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show device information",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	info, err := client.Info(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get device info: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Device:   %s\n", info.DeviceName)
	fmt.Fprintf(out, "Variant:  %s\n", info.Variant)
	fmt.Fprintf(out, "Serial:   %s\n", info.SerialNumber)
	fmt.Fprintf(out, "Hardware: %s\n", info.HWVersion)
	fmt.Fprintf(out, "Firmware: %s (%s)\n", info.SWVersion, info.BuildType)
	return nil
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the device clock and uptime",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	status, err := client.Status(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get device status: %w", err)
	}

	out := cmd.OutOrStdout()
	if t := status.Time(); !t.IsZero() {
		fmt.Fprintf(out, "Time:   %s\n", t.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(out, "Uptime: %ds\n", status.UpTime)
	return nil
}
