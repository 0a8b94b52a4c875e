package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-job-monitor/internal/app"
	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/jobs"
	"github.com/tbourn/go-job-monitor/internal/observability"
	"github.com/tbourn/go-job-monitor/internal/services"
)

// commandTimeout bounds the one-shot commands.
const commandTimeout = 2 * time.Minute

func withApp(fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return fn(ctx, a)
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, cfg.ProjectName, version)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("otel shutdown")
			}
		}()

		if !cfg.DiscordReady() {
			log.Warn().Msg("chat integration not configured; /interactions and /monitor will answer 500")
		}
		if !cfg.StoreReady() {
			log.Warn().Msg("record store not configured; failures cannot be filed")
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(ctx)
	},
}

// --- notify ---

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Announce pending failures once and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.StoreReady() || cfg.Discord.BotToken == "" || cfg.Discord.ChannelID == "" {
			return fmt.Errorf("notify: %w: store, DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID are required", services.ErrMissingConfig)
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			rep, err := a.Notifier().Run(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if rep.Empty() {
				return enc.Encode(map[string]string{"message": "no pending errors"})
			}
			return enc.Encode(rep)
		})
	},
}

// --- register-commands ---

var registerCommandsCmd = &cobra.Command{
	Use:   "register-commands",
	Short: "Register the bot's slash commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Discord.BotToken == "" || cfg.Discord.ApplicationID == "" {
			return fmt.Errorf("register-commands: %w: DISCORD_BOT_TOKEN and DISCORD_APPLICATION_ID are required", services.ErrMissingConfig)
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			cmds := services.Commands()
			if err := a.Chat().RegisterCommands(ctx, cmds); err != nil {
				return err
			}
			for _, c := range cmds {
				fmt.Fprintf(cmd.OutOrStdout(), "registered /%s\n", c.Name)
			}
			return nil
		})
	},
}

// --- test-alert ---

var testAlertCmd = &cobra.Command{
	Use:   "test-alert",
	Short: "Post a sample failure announcement without touching the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Discord.BotToken == "" || cfg.Discord.ChannelID == "" {
			return fmt.Errorf("test-alert: %w: DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID are required", services.ErrMissingConfig)
		}
		day, _ := cmd.Flags().GetString("day")
		if day == "" {
			day = businessday.Yesterday(time.Now())
		}
		if !businessday.Valid(day) {
			return fmt.Errorf("test-alert: --day must be YYYY-MM-DD, got %q", day)
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			msg := services.AnnouncementMessage(cfg.ProjectName, day, 1, []string{jobs.TestAlertName})
			if err := a.Chat().SendMessage(ctx, cfg.Discord.ChannelID, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sample alert posted for %s\n", day)
			return nil
		})
	},
}

func init() {
	testAlertCmd.Flags().String("day", "", "business day shown in the alert (default: yesterday)")
}

// --- seed-audit ---

var seedAuditCmd = &cobra.Command{
	Use:   "seed-audit",
	Short: "Insert audit table configurations from a YAML file",
	Long: `Insert audit table configurations from a YAML file.

Example file:
  tables:
    - display_name: Sales
      function_name: sync-sales
      target_table: sales
      date_column: sale_date
      date_column_type: date
      sort_order: 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return errors.New("--file is required")
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("reading seed: %w", err)
		}
		defer f.Close()

		cfgs, err := services.ParseAuditSeed(f)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			w, ok := a.Store().(services.AuditConfigWriter)
			if !ok {
				return errors.New("seed-audit: the configured store does not accept audit rows")
			}
			n, err := services.SeedAuditConfigs(ctx, w, cfgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d audit tables\n", n)
			return nil
		})
	},
}

func init() {
	seedAuditCmd.Flags().String("file", "", "YAML seed file")
}
