package fx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/fetcher"
	"github.com/sells-group/recon-cli/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rateTable(rows ...[]string) *fetcher.Table {
	return &fetcher.Table{Header: []string{"Tarih", "Efektif Satış Kuru"}, Rows: rows}
}

func TestFromTable(t *testing.T) {
	raw := rateTable(
		[]string{"03.01.2024", "30,00"},
		[]string{"01.01.2024", "29,5"},
		[]string{"03.01.2024", "31"},
		[]string{"06.01.2024", "32.25"},
		[]string{"bad", "30"},
		[]string{"04.01.2024", "0"},
		[]string{"05.01.2024", ""},
	)

	tbl, err := FromTable(raw, config.FXConfig{})
	require.NoError(t, err)
	assert.Equal(t, 6, tbl.Len())

	first, last, ok := tbl.Range()
	require.True(t, ok)
	assert.Equal(t, day(2024, 1, 1), first)
	assert.Equal(t, day(2024, 1, 6), last)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"observed", day(2024, 1, 1), "29.5"},
		{"forward filled", day(2024, 1, 2), "29.5"},
		{"duplicates averaged", day(2024, 1, 3), "30.5"},
		{"filled over skipped rows", day(2024, 1, 5), "30.5"},
		{"time of day ignored", time.Date(2024, 1, 6, 18, 30, 0, 0, time.UTC), "32.25"},
		{"before range clamps", day(2023, 12, 1), "29.5"},
		{"after range clamps", day(2025, 1, 1), "32.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tbl.Rate(tt.at)
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	assert.Equal(t, []string{
		"fx: skipped 1 rows with an unparseable date",
		"fx: skipped 2 rows with a missing or non-positive rate",
	}, tbl.Warnings())
}

func TestFromTable_MissingColumns(t *testing.T) {
	raw := &fetcher.Table{Header: []string{"Date", "Rate"}}

	_, err := FromTable(raw, config.FXConfig{})
	require.Error(t, err)

	var ce *model.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "fx table", ce.Entity)
	assert.Equal(t, []string{"Tarih", "Efektif Satış Kuru"}, ce.Fields)

	tbl, err := FromTable(raw, config.FXConfig{DateColumn: "Date", RateColumn: "Rate"})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestRate_Empty(t *testing.T) {
	var nilTable *Table
	_, ok := nilTable.Rate(day(2024, 1, 1))
	assert.False(t, ok)

	_, ok = (&Table{}).Rate(day(2024, 1, 1))
	assert.False(t, ok)

	_, _, ok = (&Table{}).Range()
	assert.False(t, ok)
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usd.csv")
	content := "Tarih;Efektif Satış Kuru\n02.01.2024;30,1\n04.01.2024;30,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := Load(context.Background(), path, config.FXConfig{})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	got, ok := tbl.Rate(day(2024, 1, 3))
	require.True(t, ok)
	assert.Equal(t, "30.1", got.String())
	assert.Empty(t, tbl.Warnings())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), config.FXConfig{})
	require.Error(t, err)
}
