// Command levycas exposes the algebra kernel three ways: a one-shot
// evaluator, an interactive REPL, and a small HTTP tool server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "levycas",
		Short:         "exact symbolic algebra: differentiate, integrate, factor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Int("depth", 0, "integration recursion budget (0 = default)")
	root.PersistentFlags().String("config", "", "config file (default $HOME/.levycas.yaml)")

	cobra.OnInitialize(func() { initConfig(root) })

	root.AddCommand(newEvalCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newServeCmd())
	return root
}

func initConfig(root *cobra.Command) {
	if cfg, _ := root.PersistentFlags().GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".levycas")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("LEVYCAS")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("depth", root.PersistentFlags().Lookup("depth"))

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("loaded config", "file", viper.ConfigFileUsed())
	}
}
