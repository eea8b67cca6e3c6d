// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/log"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const ExecutableName = "ctf"

var cfgFile string
var ansi string
var logFormat string
var verbose bool
var fancyFeatures bool
var logger log.Logger = &log.StdoutLogger{LogLevel: log.Info}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   ExecutableName,
	Short: "ctf provisions ConditionalTokens infrastructure and LMSR markets",
	Long: `ctf provisions ConditionalTokens infrastructure and LMSR markets

The ConditionalTokens contract is deployed once per network. Markets are then created
against it, one per run, and every address is recorded in a JSON file per network
under the deployments directory. Each step checks the ledger before acting, so an
interrupted run can be repeated safely.

To get started run: ctf provision infrastructure <network>
	`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ctf-cli.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose log output")
	flags.StringVar(&ansi, "ansi", "auto", "control when to print ANSI control characters (\"never\"|\"always\"|\"auto\")")
	flags.StringVar(&logFormat, "log-format", "text", "log output format (\"text\"|\"json\")")
	flags.String("deployments-dir", constants.DeploymentsDir, "directory holding one deployment record per network")
	flags.String("rpc-url", "", "JSON-RPC endpoint of the target network (env RPC_URL)")
	flags.String("private-key", "", "hex private key of the signing account (env PRIVATE_KEY)")
	flags.String("keystore", "", "V3 keystore file of the signing account (env KEYSTORE_PATH)")
	flags.String("keystore-password", "", "password for --keystore (env KEYSTORE_PASSWORD)")
	flags.Duration("timeout", constants.DefaultInclusionTimeout, "how long to wait for each transaction to be included")

	bindFlag("deployments-dir", "DEPLOYMENTS_DIR")
	bindFlag("rpc-url", "RPC_URL")
	bindFlag("private-key", "PRIVATE_KEY")
	bindFlag("keystore", "KEYSTORE_PATH")
	bindFlag("keystore-password", "KEYSTORE_PASSWORD")
	bindFlag("timeout", "INCLUSION_TIMEOUT")
	viper.SetDefault("production-networks", constants.ProductionNetworks)
}

func bindFlag(name, env string) {
	cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	cobra.CheckErr(viper.BindEnv(name, env))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".ctf-cli" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".ctf-cli")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLogger() error {
	switch ansi {
	case "always":
		fancyFeatures = true
	case "never":
		fancyFeatures = false
	case "auto":
		fancyFeatures = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	default:
		return fmt.Errorf("invalid value '%s' for --ansi", ansi)
	}

	level := log.Info
	if verbose {
		level = log.Debug
	}
	switch logFormat {
	case "text":
		logger = &log.StdoutLogger{LogLevel: level}
	case "json":
		fancyFeatures = false
		logger = log.NewLogrusLogger(os.Stderr, true, logrus.Fields{"cli": ExecutableName})
		logger.SetLogLevel(level)
	default:
		return fmt.Errorf("invalid log format '%s'", logFormat)
	}
	return nil
}

// commandContext carries the logger and verbosity for one command. On an interactive
// terminal the logger is swapped for a spinner, which the caller starts and stops.
func commandContext(cmd *cobra.Command) (context.Context, *spinner.Spinner) {
	var spin *spinner.Spinner
	if fancyFeatures && !verbose {
		spin = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		logger = log.NewSpinnerLogger(spin)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithVerbosity(ctx, verbose)
	ctx = log.WithLogger(ctx, logger)
	return ctx, spin
}

// stopSpinner stops spin and prints the warnings it collected while running.
func stopSpinner(cmd *cobra.Command, spin *spinner.Spinner) {
	if spin == nil {
		return
	}
	spin.Stop()
	if l, ok := logger.(*log.SpinnerLogger); ok {
		for _, w := range l.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s\n", w)
		}
		l.Warnings = nil
	}
}
