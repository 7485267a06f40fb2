package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/httpclient"
)

var (
	// settings merges flags, IPCAM_* environment variables and the config file
	settings *viper.Viper

	logger = slog.Default()
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ipcam-cli",
		Short: "2N intercom and IP camera command line interface",
		Long: `ipcam-cli talks to 2N intercoms and IP cameras. It runs HTTP API
commands, subscribes to SOAP event notifications and pulls the device log.

Every flag can also be set through an IPCAM_ environment variable
(e.g. IPCAM_HOST, IPCAM_PASSWORD) or a config file passed with --config.`,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
	}

	settings = viper.New()

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (yaml, toml or json)")
	flags.String("host", "", "Device address, e.g. 192.168.1.50")
	flags.Bool("ssl", false, "Use https")
	flags.String("auth", "none", "Authentication: none, basic or digest")
	flags.String("user", "", "User name")
	flags.String("password", "", "Password")
	flags.Duration("timeout", 60*time.Second, "Request timeout")
	flags.Bool("verify-tls", false, "Verify the device certificate")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")

	if err := settings.BindPFlags(flags); err != nil {
		panic(err)
	}
	settings.SetEnvPrefix("IPCAM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newCommandsCommand())
	rootCmd.AddCommand(newCallCommand())
	rootCmd.AddCommand(newListenCommand())
	rootCmd.AddCommand(newPullCommand())

	return rootCmd
}

// initialize reads the config file and installs the logger
func initialize(cmd *cobra.Command, args []string) error {
	if file := settings.GetString("config"); file != "" {
		settings.SetConfigFile(file)
		if err := settings.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	level, err := charmlog.ParseLevel(settings.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	handler := charmlog.NewWithOptions(cmd.ErrOrStderr(), charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// clientConfig builds the device client configuration from settings
func clientConfig() (httpclient.Config, error) {
	authType, err := httpclient.ParseAuthType(settings.GetString("auth"))
	if err != nil {
		return httpclient.Config{}, err
	}

	config := httpclient.Config{
		Host:      settings.GetString("host"),
		SSL:       settings.GetBool("ssl"),
		AuthType:  authType,
		Username:  settings.GetString("user"),
		Password:  settings.GetString("password"),
		Timeout:   settings.GetDuration("timeout"),
		VerifyTLS: settings.GetBool("verify-tls"),
	}
	if config.Host == "" {
		return config, fmt.Errorf("host is required (--host or IPCAM_HOST)")
	}
	return config, nil
}

func newClient() (*httpclient.Client, error) {
	config, err := clientConfig()
	if err != nil {
		return nil, err
	}
	client, err := httpclient.NewClient(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}
