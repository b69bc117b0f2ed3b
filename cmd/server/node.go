package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/node"
)

var cfg = node.DefaultConfig()

var nodeStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the quiz ledger node.",
	Long:  `Start a node serving the funds manager and the quiz verifier over gRPC.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return fmt.Errorf("trailing args detected")
		}
		// Parsing of the command line is done so silence cmd usage
		cmd.SilenceUsage = true
		return serve()
	},
}

func startCmd() *cobra.Command {
	// Set the flags on the node start command.
	flags := nodeStartCmd.Flags()
	flags.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "state directory, empty keeps state in memory")
	flags.IntVar(&cfg.CacheSize, "cache", cfg.CacheSize, "read cache entries")
	flags.StringVarP(&cfg.ListenAddress, "listenAddress", "", cfg.ListenAddress, "node server listen address")
	flags.IntVarP(&cfg.Port, "port", "p", cfg.Port, "node listen port")
	flags.StringVar(&cfg.TLSCertFile, "tls.cert", "", "TLS certificate file")
	flags.StringVar(&cfg.TLSKeyFile, "tls.key", "", "TLS key file")
	flags.StringVar(&cfg.TLSCAFile, "tls.ca", "", "TLS root CA file for client certificates")
	flags.StringVar(&cfg.AdminKeyFile, "admin-key", "admin.key", "administrator private key file")
	flags.StringVar(&cfg.Operator, "operator", "", "quiz operator address, the administrator when empty")
	flags.StringVar(&cfg.FeeCollector, "fee-collector", "", "fee collector address, the administrator when empty")
	flags.Uint64Var(&cfg.FeeBasisPoints, "fee-bps", 0, "fee basis points recorded at initialization")
	flags.StringSliceVar(&cfg.Alloc, "alloc", nil, "genesis allocation address=amount, repeatable")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error, crit")
	flags.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: terminal, logfmt or json")
	flags.StringVar(&cfg.Log.ErrorFile, "log-error-file", "", "also write error records as JSON to this file")
	return nodeStartCmd
}

func serve() error {
	if _, err := log.Setup(cfg.Log); err != nil {
		return err
	}
	logger = log.GetLogger("module", "main")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	n, err := node.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to create node", "error", err)
		return err
	}
	if err := n.Start(); err != nil {
		logger.Error("Failed to start node", "error", err)
		n.Stop()
		return err
	}

	sig := <-signals
	logger.Info("Received signal, shutting down", "signal", sig)
	n.Stop()
	return nil
}
