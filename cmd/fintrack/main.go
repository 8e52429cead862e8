package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/myfintrack/fintrack-go/api"
	"github.com/myfintrack/fintrack-go/internal/config"
	"github.com/myfintrack/fintrack-go/session"
	"github.com/myfintrack/fintrack-go/tokenstore"
	"github.com/myfintrack/fintrack-go/tokenstore/sqliterepo"
	"github.com/myfintrack/fintrack-go/transactions"
)

// app holds the wired-up client stack shared by all commands.
type app struct {
	cfg     *config.Config
	repo    *sqliterepo.Repo
	manager *session.Manager
	client  api.Doer
	txs     *transactions.Service
}

func (a *app) close() {
	if a.manager != nil {
		a.manager.Close()
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			log.Debug().Err(err).Msg("closing token store")
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	a := &app{}
	defer a.close()

	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "fintrack",
		Short:         "MyFinTrack command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			figure.NewFigure("FinTrack", "", true).Print()
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		txCmd(a),
		summaryCmd(a),
		categoriesCmd(a),
	)

	return rootCmd.Execute()
}

func (a *app) init() error {
	a.cfg = config.Load()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	repo, err := sqliterepo.New(a.cfg.StorePath)
	if err != nil {
		return err
	}
	a.repo = repo

	store := tokenstore.New(repo)
	a.manager = session.NewManager(a.cfg.BaseURL, store,
		session.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}))
	a.client = api.NewRecovery(a.manager.Client(), a.manager)
	a.txs = transactions.NewService(a.client)
	return nil
}

// requireAuth restores the persisted session and refuses when it cannot.
// Commands hitting protected endpoints call this first.
func (a *app) requireAuth(cmd *cobra.Command) error {
	ok, err := a.manager.CheckAuth(cmd.Context())
	if err != nil {
		log.Debug().Err(err).Msg("session restore failed")
	}
	if !ok {
		return fmt.Errorf("not logged in, run `fintrack login` first")
	}
	return nil
}
