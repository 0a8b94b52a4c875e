// Command jobmonitor runs the job failure monitor: the HTTP service that
// captures job failures and serves the chat interaction webhook, plus a few
// operator commands (one-shot notify, slash command registration, a sample
// alert and audit seeding).
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-job-monitor/internal/config"
	"github.com/tbourn/go-job-monitor/internal/sysutil"
)

var version = "dev"

// cfg is loaded once per invocation by the root command.
var cfg config.Config

// loadConfig is replaced in tests.
var loadConfig = config.Load

var rootCmd = &cobra.Command{
	Use:           "jobmonitor",
	Short:         "Job failure monitor with chat-driven remediation",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		sysutil.SetupLogger(sysutil.LogOptions{
			Level:   cfg.LogLevel,
			Pretty:  cfg.LogPretty,
			Project: cfg.ProjectName,
			Out:     cmd.ErrOrStderr(),
		})
		if cfg.GinMode != "" {
			gin.SetMode(cfg.GinMode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, notifyCmd, registerCommandsCmd, testAlertCmd, seedAuditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
