// Package cli provides the command-line interface for artifact-connector.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artifactrelay/connector/internal/logging"
)

var (
	endpointURL   string
	contentType   string
	username      string
	password      string
	proxyMode     string
	proxyHost     string
	proxyPort     int
	proxyUser     string
	proxyPassword string
	noProxy       string
	proxyWarmup   bool

	checksumPolicy   string
	disableResumable bool
	useCache         bool
	maxRetries       int

	verbose bool

	logger *logging.Logger

	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version is set by main at startup.
var Version = "dev"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "artifact-connector",
		Short: "Transfer build artifacts and metadata between a remote repository and a local cache",
		Long: `artifact-connector ` + Version + `

Resumable, checksum-verified transport of build artifacts and their
sidecar metadata between an HTTP(S)/WebDAV remote and a local filesystem
cache.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger = logging.NewVerbose()
			} else {
				logger = logging.New()
			}
		},
		Version: Version,
	}

	rootCmd.PersistentFlags().StringVar(&endpointURL, "url", "", "remote repository base URL (required)")
	rootCmd.PersistentFlags().StringVar(&contentType, "content-type", "default", "endpoint content-type tag")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "basic auth username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "basic auth password")

	rootCmd.PersistentFlags().StringVar(&proxyMode, "proxy-mode", "", "proxy mode: no-proxy, system, basic, ntlm")
	rootCmd.PersistentFlags().StringVar(&proxyHost, "proxy-host", "", "proxy host")
	rootCmd.PersistentFlags().IntVar(&proxyPort, "proxy-port", 0, "proxy port")
	rootCmd.PersistentFlags().StringVar(&proxyUser, "proxy-user", "", "proxy username")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "proxy password")
	rootCmd.PersistentFlags().StringVar(&noProxy, "no-proxy", "", "comma-separated proxy bypass list")
	rootCmd.PersistentFlags().BoolVar(&proxyWarmup, "proxy-warmup", false, "probe the proxy before the first transfer")

	rootCmd.PersistentFlags().StringVar(&checksumPolicy, "checksum-policy", "strict", "checksum policy: strict, warn, ignore")
	rootCmd.PersistentFlags().BoolVar(&disableResumable, "disable-resume", false, "never resume a partial download")
	rootCmd.PersistentFlags().BoolVar(&useCache, "use-cache", false, "allow intermediary HTTP caches")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", 0, "whole-request retry budget (0 = default)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newPutCmd())

	return rootCmd
}

// Execute runs the root command, wiring SIGINT/SIGTERM to the context every
// subcommand receives.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	rootContext = ctx
	cancelFunc = cancel

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "\ninterrupted, cancelling in-flight transfers...")
		cancel()
	}()

	return NewRootCmd().Execute()
}
