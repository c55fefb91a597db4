package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deckchat/internal/config"
	"deckchat/internal/i18n"
	"deckchat/internal/storage"
)

type sessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     int       `json:"messages"`
	Documents    int       `json:"documents"`
	LastActivity time.Time `json:"lastActivity"`
	Active       bool      `json:"active"`
}

func newSessionsCmd(configPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List chats, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configPath, func(a *app) error {
				active := a.store.ActiveID()
				out := []sessionSummary{}
				for _, s := range a.store.ListByRecency() {
					docs := 0
					for _, m := range s.Messages {
						if m.IsDocument() {
							docs++
						}
					}
					out = append(out, sessionSummary{
						ID:           s.ID,
						Title:        s.Title,
						Messages:     len(s.Messages),
						Documents:    docs,
						LastActivity: s.LastActivity(),
						Active:       s.ID == active,
					})
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(out)
				}
				for i, s := range out {
					mark := " "
					if s.Active {
						mark = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %2d. %s  %s  %s\n", mark, i+1, s.Title,
						a.locale.T("sidebar.messages", s.Messages), s.LastActivity.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <chatHistory.json>",
		Short: "Merge a chat history exported from the browser build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			durable, err := storage.NewSQLiteStore(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open session database: %w", err)
			}
			defer durable.Close()

			n, err := storage.ImportHistory(args[0], durable)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.imported", n, args[0]))
			return nil
		},
	}
}

func newModelsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models offered by the provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			available := normalizedModels(cfg.Provider.Models, cfg.Provider.Model)
			infos, err := newProvider(cfg).ListModels(cmd.Context())
			if err != nil {
				cmd.PrintErrln(i18n.T("error.provider", err.Error()))
			} else {
				ids := make([]string, 0, len(infos))
				for _, m := range infos {
					ids = append(ids, m.ID)
				}
				sort.Strings(ids)
				available = normalizedModels(append(available, ids...), cfg.Provider.Model)
			}
			if len(available) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.no_models", cfg.Provider.BaseURL))
				return nil
			}
			for i, m := range available {
				mark := " "
				if m == cfg.Provider.Model {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %2d. %s\n", mark, i+1, m)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "use <name|n>",
		Short: "Set provider.model in the project config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			model, err := resolveModelTarget(args[0], normalizedModels(cfg.Provider.Models, cfg.Provider.Model))
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := config.WriteProviderModel(cwd, model); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model set to %s\n", model)
			return nil
		},
	})
	return cmd
}

func newEndpointCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint [url]",
		Short: "Show or set the processing webhook URL in the project config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cfg, err := loadConfig(*configPath)
				if err != nil {
					return err
				}
				url := cfg.Endpoint.URL
				if url == "" {
					url = "(not configured)"
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}
			url := strings.TrimSpace(args[0])
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return fmt.Errorf("endpoint must be an http(s) URL: %q", url)
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := config.WriteEndpointURL(cwd, url); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "endpoint set to %s\n", url)
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a project config scaffold to ./.deckchat/config.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.InitProjectConfigScaffold()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
