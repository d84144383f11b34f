// termfolio plays the portfolio terminal in a local console.
// Usage: termfolio [--site-url <url>] [--boot-delay 30ms] [--response-delay 10ms]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cnsenarathna/portfolio/terminal"
)

// Set via -ldflags at build time.
var version = "dev"

var (
	siteURL       string
	prompt        string
	bootDelay     time.Duration
	responseDelay time.Duration

	rootCmd = &cobra.Command{
		Use:               "termfolio",
		Short:             "Browse the portfolio from a terminal",
		Version:           version,
		Args:              cobra.NoArgs,
		RunE:              runTerminal,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

func init() {
	def := terminal.DefaultOptions()
	rootCmd.Flags().StringVar(&siteURL, "site-url", envOr("SITE_URL", "http://localhost:8080"), "site that navigation commands point at")
	rootCmd.Flags().StringVar(&prompt, "prompt", def.Prompt, "prompt shown before each input line")
	rootCmd.Flags().DurationVar(&bootDelay, "boot-delay", def.BootDelay, "delay between welcome characters")
	rootCmd.Flags().DurationVar(&responseDelay, "response-delay", def.ResponseDelay, "delay between reply characters")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runTerminal(cmd *cobra.Command, args []string) error {
	opts := terminal.DefaultOptions()
	opts.Prompt = prompt
	opts.BootDelay = bootDelay
	opts.ResponseDelay = responseDelay
	return Run(siteURL, opts)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
