package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/moah0o0/public-funeral-scrapper/internal/config"
	applog "github.com/moah0o0/public-funeral-scrapper/internal/log"
	"github.com/moah0o0/public-funeral-scrapper/internal/store"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove orphan and duplicate delivery markers from the store",
		Long: `Cleanup repairs the delivery-marker collection after manual edits:
markers whose analyzed record was removed by hand are orphans, and
retried deliveries can leave several markers for one notice. Orphans
are deleted; duplicates keep only the newest marker per notice.

Examples:
  # Remove both orphans and duplicates
  funeralscraper cleanup

  # Remove only orphan markers
  funeralscraper cleanup --orphans --duplicates=false`,
		Args: cobra.NoArgs,
		RunE: runCleanupCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file path")
	cmd.Flags().String("store-url", "", "Record store base URL")
	cmd.Flags().Bool("orphans", true, "Remove markers with no analyzed record")
	cmd.Flags().Bool("duplicates", true, "Remove all but the newest marker per notice")

	return cmd
}

// runCleanupCmd runs the requested marker cleanups against the store.
func runCleanupCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.New()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if found := config.FindConfigFile(configPath); found != "" {
		if err := cfg.LoadFile(found); err != nil {
			return fmt.Errorf("load config file %s: %w", found, err)
		}
	} else if configPath != "" {
		return fmt.Errorf("configuration file not found: %s", configPath)
	}
	if v, _ := cmd.Flags().GetString("store-url"); v != "" {
		cfg.StoreURL = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.New(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	st := store.NewClient(cfg.StoreURL, cfg.StoreIdentity, cfg.StorePassword,
		store.WithLogger(logger))
	ctx := cmd.Context()
	if err := st.Authenticate(ctx); err != nil {
		return fmt.Errorf("store authentication: %w", err)
	}

	if on, _ := cmd.Flags().GetBool("orphans"); on {
		n := st.CleanupOrphanSent(ctx)
		if n < 0 {
			return fmt.Errorf("orphan marker cleanup failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "orphan markers removed: %d\n", n)
	}

	if on, _ := cmd.Flags().GetBool("duplicates"); on {
		n := st.CleanupDuplicateSent(ctx)
		if n < 0 {
			return fmt.Errorf("duplicate marker cleanup failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "duplicate markers removed: %d\n", n)
	}

	return nil
}
