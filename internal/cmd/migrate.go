package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DjSurgeon/mern-thinkboard/internal/config"
	"github.com/DjSurgeon/mern-thinkboard/internal/observability"
	"github.com/DjSurgeon/mern-thinkboard/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the notes schema in the configured libsql database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := loadViper()
		if err != nil {
			return err
		}
		sc, err := config.LoadStore(v)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		lc := config.LoadLog(v)
		log, err := observability.NewLogger(lc.Level, lc.Format)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if sc.Driver == config.DriverMemory {
			log.Info("DB_DRIVER=memory has no schema; nothing to migrate")
			return nil
		}

		st, err := store.Open(cmd.Context(), sc)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("schema is up to date", zap.String("path", sc.Path), zap.Bool("remote", sc.URL != ""))
		return nil
	},
}
