package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/httpclient"
)

func newCallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call COMMAND [name=value ...]",
		Short: "Run a device API command",
		Long: `Run any device API command by name. Parameters are passed as name=value
pairs; repeat a name to send a comma separated list.

Examples:
  ipcam-cli call switch.ctrl switch=1 action=on
  ipcam-cli call log.subscribe filter=KeyPressed filter=CallStateChanged
  ipcam-cli call display.image.upload display=1 --file logo.gif
  ipcam-cli call pcap --output trace.pcap`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCall,
	}

	cmd.Flags().String("file", "", "File to upload for PUT commands")
	cmd.Flags().String("output", "", "Write the response body to this file")

	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	name := args[0]
	command, err := httpclient.Lookup(name)
	if err != nil {
		return err
	}

	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")

	out := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()

	switch {
	case command.Stream:
		body, err := client.Stream(ctx, name, params)
		if err != nil {
			return err
		}
		defer body.Close()
		if _, err := io.Copy(out, body); err != nil {
			return fmt.Errorf("stream interrupted: %w", err)
		}
		return nil

	case command.UploadField != "":
		if file == "" {
			return fmt.Errorf("%s requires --file", name)
		}
		resp, err := client.Upload(ctx, name, file, params)
		if err != nil {
			return err
		}
		return writeBody(out, resp.Body)

	default:
		resp, err := client.Execute(ctx, name, params)
		if err != nil {
			return err
		}
		return writeBody(out, resp.Body)
	}
}

// parseParams turns name=value pairs into command args. A repeated name
// becomes a list.
func parseParams(pairs []string) (httpclient.Args, error) {
	args := httpclient.Args{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}

		switch existing := args[name].(type) {
		case nil:
			args[name] = value
		case string:
			args[name] = []string{existing, value}
		case []string:
			args[name] = append(existing, value)
		}
	}
	return args, nil
}

// writeBody pretty-prints JSON bodies and copies anything else verbatim
func writeBody(w io.Writer, body []byte) error {
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		pretty.WriteByte('\n')
		body = pretty.Bytes()
	}
	_, err := w.Write(body)
	return err
}
