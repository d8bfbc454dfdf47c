package main

import (
	"fmt"
	"os"
	"time"

	"github.com/2beens/liftlog/internal/client"
	"github.com/2beens/liftlog/internal/gymstats/folders"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/pkg/optimistic"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

type globalOptions struct {
	apiURL  string
	token   string
	timeout time.Duration
}

// app is the client with the caches a single command run works against.
type app struct {
	api      *client.Client
	workouts *client.WorkoutCache
	folders  *client.FolderCache
}

func newApp(opts *globalOptions) *app {
	api := client.New(opts.apiURL, opts.timeout)
	api.SetToken(opts.token)
	return &app{
		api: api,
		workouts: client.NewWorkoutCache(api,
			optimistic.NewStore[model.Workout](optimistic.WithCacheSize(8*1024*1024)),
		),
		folders: client.NewFolderCache(api,
			optimistic.NewStore[folders.Listing](optimistic.WithCacheSize(8*1024*1024)),
		),
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "liftctl",
		Short:         "liftlog command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("LIFTLOG_API_URL", "http://localhost:9000"), "liftlog API base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LIFTLOG_TOKEN"), "session token")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "HTTP request timeout")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newWorkoutCmd(opts))
	cmd.AddCommand(newSetCmd(opts))
	cmd.AddCommand(newFolderCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "liftctl %s (commit: %s)\n", Version, Commit)
		},
	}
}

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and print the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("LIFTLOG_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("password required: use --password or LIFTLOG_PASSWORD")
			}
			a := newApp(opts)
			if err := a.api.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.api.Token())
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
