package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funeralscraper",
		Short: "Crawl Busan district boards for public funeral notices",
		Long: `funeralscraper crawls the sixteen Busan district office boards for
public funeral notices and runs them through a three-phase pipeline:
collect new notices, analyze them into structured fields, and deliver
unsent notices to the subscriber channel.

Store credentials come from the FUNERAL_STORE_IDENTITY and
FUNERAL_STORE_PASSWORD environment variables. Boards that block
crawler traffic are fetched through Tor automatically.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
