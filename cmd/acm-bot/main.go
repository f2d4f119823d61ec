// Command acm-bot is the contest bot for competitive-programming chat groups.
//
// Usage:
//
//	acm-bot serve
//	acm-bot contests cf
//	acm-bot contests scpc
//	acm-bot rating tourist
//	acm-bot user xiaoming
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TeAnli/acm-bot/internal/api"
	"github.com/TeAnli/acm-bot/internal/bot"
	"github.com/TeAnli/acm-bot/internal/cache"
	"github.com/TeAnli/acm-bot/internal/config"
	"github.com/TeAnli/acm-bot/internal/contest"
	"github.com/TeAnli/acm-bot/internal/onebot"
	"github.com/TeAnli/acm-bot/internal/platform/codeforces"
	"github.com/TeAnli/acm-bot/internal/platform/scpc"
	"github.com/TeAnli/acm-bot/internal/store"
	"github.com/TeAnli/acm-bot/internal/watch"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "acm-bot",
		Short: "Contest bot for competitive-programming chat groups",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(contestsCmd())
	root.AddCommand(ratingCmd())
	root.AddCommand(userCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot: event webhook, status API, and contest alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.OneBotAPIURL == "" {
				return fmt.Errorf("ONEBOT_API_URL is required")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			groups, err := store.Open(ctx, cfg.StoreDriver, storeDSN(cfg))
			if err != nil {
				return fmt.Errorf("open subscription store: %w", err)
			}
			defer groups.Close()
			logger.Info("Subscription store ready", "driver", cfg.StoreDriver)

			cfClient := codeforces.NewClient(cfg.CodeforcesBaseURL, cfg.HTTPTimeout, logger)
			scpcClient := scpc.NewClient(cfg.SCPCBaseURL, cfg.HTTPTimeout, logger)
			chat := onebot.NewClient(cfg.OneBotAPIURL, cfg.OneBotToken, cfg.HTTPTimeout, logger)

			replies := cache.New(cfg.CacheEnabled)
			logger.Info("Reply cache initialized", "enabled", cfg.CacheEnabled)

			events := bot.New(cfClient, scpcClient, chat, groups, replies, cfg.AssetsDir, logger)

			watcher := watch.New(cfClient, chat, groups, cfg.AlertThreshold, cfg.WatchInterval, logger)
			go watcher.Start(ctx)

			router := api.NewRouter(events, watcher, groups, cfg, logger)

			addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				logger.Info("Starting acm-bot",
					"addr", addr,
					"environment", cfg.Environment)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Server failed", "error", err)
					os.Exit(1)
				}
			}()

			<-ctx.Done()
			logger.Info("Shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown error", "error", err)
			}
			logger.Info("Server stopped")
			return nil
		},
	}
}

func storeDSN(cfg *config.Config) string {
	if cfg.StoreDriver == "postgres" {
		return cfg.DatabaseURL
	}
	return cfg.StorePath
}

// --------------------------------------------------------------------------
// one-shot commands for local use
// --------------------------------------------------------------------------

func contestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contests",
		Short: "List upcoming and running contests",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cf",
		Short: "List Codeforces contests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printContests(cmd.Context(), func(ctx context.Context, cfg *config.Config) ([]contest.Classified, error) {
				return codeforces.NewClient(cfg.CodeforcesBaseURL, cfg.HTTPTimeout, logger).ActiveContests(ctx)
			}, true)
		},
	})
	var recent bool
	scpcCmd := &cobra.Command{
		Use:   "scpc",
		Short: "List SCPC contests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printContests(cmd.Context(), func(ctx context.Context, cfg *config.Config) ([]contest.Classified, error) {
				client := scpc.NewClient(cfg.SCPCBaseURL, cfg.HTTPTimeout, logger)
				if recent {
					list, err := client.RecentContests(ctx)
					if err != nil {
						return nil, err
					}
					return classifyAll(list), nil
				}
				return client.ActiveContests(ctx)
			}, false)
		},
	}
	scpcCmd.Flags().BoolVar(&recent, "recent", false, "Use the judge's curated recent-contest list")
	cmd.AddCommand(scpcCmd)
	return cmd
}

func classifyAll(list []contest.Contest) []contest.Classified {
	now := time.Now().Unix()
	items := make([]contest.Classified, 0, len(list))
	for _, ct := range list {
		if cl, ok := contest.Classify(ct, now); ok {
			items = append(items, cl)
		}
	}
	return items
}

func printContests(ctx context.Context, fetch func(context.Context, *config.Config) ([]contest.Classified, error), includeID bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	items, err := fetch(ctx, cfg)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no upcoming or running contests")
		return nil
	}
	fmt.Println(strings.Join(contest.Render(items, includeID), "\n\n"))
	return nil
}

func ratingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rating <handle>",
		Short: "Show a Codeforces user's rating history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			changes, err := codeforces.NewClient(cfg.CodeforcesBaseURL, cfg.HTTPTimeout, logger).UserRating(ctx, args[0])
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				fmt.Printf("%s has no rated contests\n", args[0])
				return nil
			}
			for _, ch := range changes {
				fmt.Printf("%s  rank %d  %d -> %d\n", ch.ContestName, ch.Rank, ch.OldRating, ch.NewRating)
			}
			return nil
		},
	}
}

func userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <name>",
		Short: "Show an SCPC user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			user, err := scpc.NewClient(cfg.SCPCBaseURL, cfg.HTTPTimeout, logger).UserInfo(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("nickname:  %s\n", user.Nickname)
			fmt.Printf("signature: %s\n", user.Signature)
			fmt.Printf("submitted: %d\n", user.Total)
			fmt.Printf("accepted:  %d\n", user.Solved)
			fmt.Printf("ratio:     %.2f%%\n", user.AcceptRatio())
			return nil
		},
	}
}
