package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/httpclient"
)

func newCommandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the device API commands",
		Args:  cobra.NoArgs,
		RunE:  runCommands,
	}
}

func runCommands(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMAND\tMETHOD\tPATH\tPARAMETERS")

	for _, name := range httpclient.Names() {
		c, _ := httpclient.Lookup(name)

		params := make([]string, 0, len(c.Params)+1)
		for _, p := range c.Params {
			if p.Required {
				params = append(params, p.Name)
			} else {
				params = append(params, "["+p.Name+"]")
			}
		}
		if c.UploadField != "" {
			params = append(params, "--file")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Method, c.Path, strings.Join(params, " "))
	}

	return w.Flush()
}
