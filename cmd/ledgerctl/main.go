// Command ledgerctl is the operator CLI for the ledger: seeding, handover and
// read-only reports against the same database the API uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"bendahara/internal/authz"
	"bendahara/internal/config"
	"bendahara/internal/database"
	"bendahara/internal/logger"
	"bendahara/internal/revalidate"
	"bendahara/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Operate the pesantren ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("as", "", "email of the account to act as")

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(handoverCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(balancesCmd())
}

func main() {
	env := os.Getenv("ENV")
	if env == "" || env == "production" {
		env = "cli"
	}
	logger.Init(env)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles what a subcommand needs. close releases the database and redis.
type app struct {
	cfg      *config.Config
	db       *database.Manager
	notifier revalidate.Notifier
	close    func()
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: dbManager, notifier: revalidate.LogNotifier{}}
	closers := []func(){func() { _ = dbManager.Close() }}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		a.notifier = revalidate.NewRedisNotifier(rdb, cfg.RevalidateChannel)
		closers = append(closers, func() { _ = rdb.Close() })
	}

	a.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return a, nil
}

// actor resolves the --as flag through the user directory.
func (a *app) actor(cmd *cobra.Command) (authz.Actor, error) {
	email, _ := cmd.Flags().GetString("as")
	if email == "" {
		return authz.Actor{}, fmt.Errorf("--as is required")
	}
	user, err := services.NewUserService(a.db.DB()).GetUserByEmail(cmd.Context(), email)
	if err != nil {
		return authz.Actor{}, fmt.Errorf("cannot act as %s: %w", email, err)
	}
	return authz.Actor{UserID: user.ID, Role: user.Role}, nil
}
