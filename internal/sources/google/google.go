// Package google reads the input tables from a Google Sheets spreadsheet,
// one tab per table.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"aceiro/internal/core"
	"aceiro/internal/sources"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the service account used to read it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountFile string
	ServiceAccountJSON string
}

type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

type Client struct {
	values        valuesGetter
	spreadsheetID string
}

// Ensure interface conformance
var _ sources.TableReader = (*Client)(nil)

// New creates a read-only Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{values: apiValues{svc: svc}, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither JSON nor file is set.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Describe() string {
	return "sheets:" + c.spreadsheetID
}

// ReadTable reads the tab named after the entity. The first row is the header.
func (c *Client) ReadTable(ctx context.Context, entity core.Entity) (core.RawTable, error) {
	rng := sheetRange(entity)
	source := c.spreadsheetID + "!" + rng
	if c.values == nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: errors.New("sheets service not initialized")}
	}
	values, err := c.values.Get(ctx, c.spreadsheetID, rng)
	if err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: err}
	}
	t, err := valuesToTable(values, entity)
	if err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: err}
	}
	t.Source = source
	return t, nil
}

type apiValues struct {
	svc *gsheet.Service
}

func (a apiValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func sheetRange(entity core.Entity) string {
	return "'" + entity.String() + "'"
}

// valuesToTable converts a values matrix as returned by the Sheets API.
// Trailing empty cells are omitted by the API, so rows may be short.
func valuesToTable(values [][]interface{}, entity core.Entity) (core.RawTable, error) {
	if len(values) == 0 {
		return core.RawTable{}, errors.New("empty sheet")
	}
	t := core.RawTable{
		Entity: entity,
		Header: toStrings(values[0]),
		Rows:   make([][]string, 0, len(values)-1),
		Lines:  make([]int, 0, len(values)-1),
	}
	for i, v := range values[1:] {
		row := toStrings(v)
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, i+2)
	}
	return t, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case bool:
			out[i] = strconv.FormatBool(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
