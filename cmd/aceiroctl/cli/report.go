package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"aceiro/internal/aggregate"
	"aceiro/internal/backend"
	"aceiro/internal/charts"
	appcli "aceiro/internal/cli"
	"aceiro/internal/core"
)

var (
	reportBackend string
	reportDataDir string
	reportDB      string
	reportTables  []string
	reportFormat  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the aggregate tables",
	Long: `Load the dataset from the configured backend and print the aggregate
tables shown on the dashboard. Flags override DATA_BACKEND, DATA_DIR and
SQLITE_DB_PATH.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportBackend, "backend", "", "Data backend: csv, sqlite or sheets")
	reportCmd.Flags().StringVar(&reportDataDir, "data-dir", "", "CSV directory (csv backend)")
	reportCmd.Flags().StringVar(&reportDB, "db", "", "SQLite snapshot path (sqlite backend)")
	reportCmd.Flags().StringSliceVar(&reportTables, "table", nil, "Aggregate to print (repeatable); default all")
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format: text or json")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if reportBackend != "" {
		cfg.DataBackend = reportBackend
	}
	if reportDataDir != "" {
		cfg.DataDir = reportDataDir
	}
	if reportDB != "" {
		cfg.SQLiteDBPath = reportDB
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	staffing, err := cfg.StaffingEntries()
	if err != nil {
		return err
	}
	if staffing == nil {
		staffing = charts.DefaultStaffing()
	}

	ds, err := appcli.LoadDataset(cmd.Context(), cfg, bcfg, logger)
	if err != nil {
		return err
	}

	tables, err := selectTables(ds, staffing, reportTables)
	if err != nil {
		return err
	}

	switch reportFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tables)
	case "text":
		return writeReport(cmd.OutOrStdout(), ds, tables)
	default:
		return fmt.Errorf("unknown format %q: must be text or json", reportFormat)
	}
}

// selectTables computes the requested aggregates in the order given, or all
// of them in display order when names is empty.
func selectTables(ds *core.Dataset, staffing []core.Bucket, names []string) ([]core.AggregateTable, error) {
	if len(names) == 0 {
		names = append(aggregate.Names(), aggregate.NameStaffing)
	}
	out := make([]core.AggregateTable, 0, len(names))
	for _, name := range names {
		if name == aggregate.NameStaffing {
			out = append(out, aggregate.Staffing(staffing))
			continue
		}
		t, ok := aggregate.Lookup(ds, name)
		if !ok {
			valid := append(aggregate.Names(), aggregate.NameStaffing)
			return nil, fmt.Errorf("unknown table %q (valid: %s)", name, strings.Join(valid, ", "))
		}
		out = append(out, t)
	}
	return out, nil
}

// writeReport prints a dataset summary followed by each table as aligned
// key/count columns.
func writeReport(out io.Writer, ds *core.Dataset, tables []core.AggregateTable) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Load %s from %s\n", ds.LoadID, ds.Source)
	counts := ds.Counts()
	for _, e := range core.Entities() {
		fmt.Fprintf(w, "%s\t%d\t\n", e, counts[e])
	}

	for _, t := range tables {
		fmt.Fprintf(w, "\n%s\n", t.Name)
		fmt.Fprintf(w, "%s\t%s\t\n", t.KeyField, t.ValueField)
		if t.IsEmpty() {
			fmt.Fprintln(w, "(empty)")
			continue
		}
		for _, b := range t.Rows {
			fmt.Fprintf(w, "%s\t%d\t\n", b.Key, b.Count)
		}
		fmt.Fprintf(w, "total\t%d\t\n", t.Total())
	}
	return w.Flush()
}
