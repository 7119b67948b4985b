package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
)

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or create the configuration file",
		Annotations: map[string]string{annotationStore: "none"},
	}

	show := &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStore: "none"},
		RunE: func(*cobra.Command, []string) error {
			path := a.configFile()
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			printf(a.out, "  Config file: %s\n", path)
			if _, err := os.Stat(path); err == nil {
				printf(a.out, "  Status: loaded\n")
			} else {
				printf(a.out, "  Status: using defaults (no config file)\n")
			}
			printf(a.out, "\n  [storage]\n")
			printf(a.out, "    Backend:     %s\n", cfg.Storage.Backend)
			printf(a.out, "    SQLite path: %s\n", cfg.Storage.SQLiteDBPath)
			printf(a.out, "    Data dir:    %s\n", cfg.Storage.DataDirectory)
			printf(a.out, "\n  [log]\n")
			printf(a.out, "    Level:  %s\n", cfg.Log.Level)
			printf(a.out, "    Format: %s\n", cfg.Log.Format)
			printf(a.out, "\n  [amqp]\n")
			if cfg.AMQP.URL == "" {
				printf(a.out, "    Posting events: disabled\n")
			} else {
				printf(a.out, "    URL:      %s\n", maskURL(cfg.AMQP.URL))
				printf(a.out, "    Exchange: %s\n", cfg.AMQP.Exchange)
				printf(a.out, "    Queue:    %s\n", cfg.AMQP.Queue)
			}
			if cfg.Display.Currency != "" {
				printf(a.out, "\n  [display]\n    Currency: %s\n", cfg.Display.Currency)
			}

			if err := cfg.Validate(); err != nil {
				printf(a.out, "\n  %s\n", Bad(err.Error()))
			}
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStore: "none"},
		RunE: func(*cobra.Command, []string) error {
			path := a.configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			printf(a.out, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func (a *App) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.Path()
}

// maskURL hides the password of an AMQP URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
