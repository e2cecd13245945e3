package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"aceiro/internal/amqp"
	"aceiro/internal/config"
	"aceiro/internal/core"
	applog "aceiro/internal/log"
	"aceiro/internal/services"
	"aceiro/internal/sources/files"
	"aceiro/internal/storage"
)

var (
	importFrom      string
	importDB        string
	importNoPublish bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a CSV directory into the SQLite snapshot",
	Long: `Load the seven CSV files from a directory, validate them with the
dashboard's rules and replace the SQLite snapshot in one transaction.
When AMQP_URL is set a dataset.imported notification is published.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "CSV directory (default DATA_DIR)")
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite snapshot path (default SQLITE_DB_PATH)")
	importCmd.Flags().BoolVar(&importNoPublish, "no-publish", false, "Skip the AMQP notification")
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	from := firstNonEmpty(importFrom, cfg.DataDir)
	dbPath := firstNonEmpty(importDB, cfg.SQLiteDBPath)

	var publisher services.ImportPublisher
	if cfg.AMQPURL != "" && !importNoPublish {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			logger.Warn("AMQP unavailable, import will not be announced", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	res, err := importDataset(cmd.Context(), cfg, from, dbPath, publisher, logger)
	if err != nil {
		return err
	}
	printImport(cmd.OutOrStdout(), res, dbPath)
	return nil
}

// importDataset validates the CSV directory and writes it to the snapshot.
func importDataset(ctx context.Context, cfg *config.Config, from, dbPath string, publisher services.ImportPublisher, logger *applog.Logger) (services.ImportResult, error) {
	loc, err := cfg.Location()
	if err != nil {
		return services.ImportResult{}, err
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return services.ImportResult{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer repo.Close()

	start := time.Now()
	store := files.New(from)
	loader := services.NewDatasetLoader(store, loc, logger.WithComponent(applog.ComponentLoader))
	res, err := services.NewImportService(loader, repo, publisher, store.Describe()).Import(ctx)
	if err != nil {
		return services.ImportResult{}, err
	}

	logger.Info("Snapshot imported",
		"import_id", res.ImportID,
		"db", dbPath,
		"published", res.Published,
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func printImport(w io.Writer, res services.ImportResult, dbPath string) {
	fmt.Fprintf(w, "Imported %s into %s\n", res.ImportID, dbPath)
	for _, e := range core.Entities() {
		fmt.Fprintf(w, "  %-24s %d rows\n", e, res.Rows[e.String()])
	}
	if res.Published {
		fmt.Fprintln(w, "Notification published")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
