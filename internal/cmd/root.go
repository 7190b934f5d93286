// Package cmd monta a CLI (cobra) da API de notas: serve, migrate e probe.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DjSurgeon/mern-thinkboard/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "thinkboard",
	Short: "Notes API with distributed and local rate limiting",
	Long: `thinkboard serves a small notes CRUD API behind two rate limiters:
a per-IP fixed window kept in Redis and a process-wide fixed window kept in memory.

Configuration comes from environment variables (and .env), optionally
overridden by a YAML file passed with --config.`,
	SilenceUsage: true,
}

// Execute roda o comando raiz; chamado por main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (optional)")
	rootCmd.AddCommand(serveCmd, migrateCmd, probeCmd)
}

func loadViper() (*viper.Viper, error) {
	return config.NewViper(cfgFile)
}
