package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diarynotes/diary-go/internal/api"
	"github.com/diarynotes/diary-go/internal/config"
	"github.com/diarynotes/diary-go/internal/diary"
	"github.com/diarynotes/diary-go/internal/session"
)

var (
	verbose bool
	apiURL  string
)

var rootCmd = &cobra.Command{
	Use:   "diary",
	Short: "Read and write your diary notes from the terminal",
	Long: `diary logs in with a signup code or email and a PIN, then lists, shows,
adds, edits and removes the notes of your medical profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides DIARY_API_URL)")
}

// app is the wiring every command shares: one session store and one API client.
type app struct {
	cfg    config.Client
	store  *session.Store
	file   *session.FileStorage
	client *api.Client
}

func newApp() (*app, error) {
	cfg := config.LoadClient()
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	file := session.NewFileStorage(cfg.SessionFile)
	store := session.NewStore(file, slog.Default())

	client, err := api.New(cfg.APIURL, store,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(slog.Default()),
		api.WithStrictParsing(cfg.StrictParse),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: store, file: file, client: client}, nil
}

func (a *app) auth() *diary.AuthSession {
	return diary.NewAuthSession(a.client, a.store, slog.Default())
}

func (a *app) notes() *diary.NotesSession {
	return diary.NewNotesSession(a.client,
		diary.WithPageSize(a.cfg.PageSize),
		diary.WithNotesLogger(slog.Default()),
	)
}

// requireLogin fails early with a hint instead of sending a request that cannot succeed.
func (a *app) requireLogin() error {
	if !a.store.IsLoggedIn() {
		return fmt.Errorf("%w (run: diary login)", api.ErrUnauthenticated)
	}
	return nil
}
