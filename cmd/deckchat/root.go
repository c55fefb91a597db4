package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"deckchat/internal/config"
	"deckchat/internal/repl"
	"deckchat/internal/tui"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "deckchat",
		Short:         "Chat with a research webhook and turn its documents into narrated slide decks",
		Long:          "deckchat keeps multi-session chats with an external processing endpoint, formats the documents it returns, and generates presentations you can play in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(configPath, func(a *app) error {
				return tui.Run(tui.Options{
					Controller:  a.ctl,
					Player:      a.player,
					Fallback:    fallback(a.cfg),
					MaxUploadMB: a.cfg.Endpoint.MaxUploadMB,
					Locale:      a.locale,
					Context:     cmd.Context(),
				})
			})
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config JSON/JSONC")

	rootCmd.AddCommand(
		newREPLCmd(&configPath),
		newSessionsCmd(&configPath),
		newImportCmd(&configPath),
		newModelsCmd(&configPath),
		newEndpointCmd(&configPath),
		newInitCmd(),
	)
	return rootCmd
}

func newREPLCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Line-oriented console for terminals without full-screen support",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configPath, func(a *app) error {
				var (
					input repl.LineInput
					color bool
				)
				if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
					var err error
					input, err = repl.NewLineInput(a.cfg.HistoryFile())
					if err != nil {
						cmd.PrintErrf("line editor unavailable, fallback to basic input: %v\n", err)
					}
					color = repl.ColorEnabled(int(f.Fd()))
				} else {
					input = repl.NewBasicLineInput(cmd.InOrStdin(), nil)
				}
				defer input.Close()

				loop := repl.New(repl.Options{
					Controller:  a.ctl,
					Input:       input,
					Out:         repl.OutputFor(input, cmd.OutOrStdout()),
					Locale:      a.locale,
					MaxUploadMB: a.cfg.Endpoint.MaxUploadMB,
					Player:      a.player,
					Fallback:    fallback(a.cfg),
					Color:       color,
				})
				return loop.Run(cmd.Context())
			})
		},
	}
}

func withApp(configPath string, fn func(*app) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := wireApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func fallback(cfg config.Config) time.Duration {
	return time.Duration(cfg.Playback.FallbackMS) * time.Millisecond
}
