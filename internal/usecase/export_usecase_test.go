package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/listing-harvester/internal/adapter/sqlite"
	"github.com/user/listing-harvester/internal/entity"
)

func exportHarness(t *testing.T) (Exporter, *sqlite.ListingRepoImpl, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(context.Background(), filepath.Join(dir, "harvest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewListingRepo(db)
	outDir := filepath.Join(dir, "output")
	return NewExporter(repo, outDir), repo, outDir
}

func exportListing(id string) *entity.Listing {
	return &entity.Listing{
		ID:           id,
		Title:        "Casa 3 quartos no Centro",
		Price:        "R$ 480.000",
		Area:         "140 m²",
		Rooms:        "3",
		Bathrooms:    "2",
		Description:  "Casa ampla com quintal.",
		Address:      "Rua XV de Novembro, 321",
		City:         "Curitiba",
		Region:       "PR",
		PostalCode:   "80020-310",
		Contact:      "(41) 98888-7777",
		SourceURL:    "https://www.vivareal.com.br/imovel/casa-" + id,
		SourceDomain: "VIVAREAL",
		CollectedAt:  time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
		RawSnippet:   "<html><head><title>Casa",
	}
}

func TestExportCSV(t *testing.T) {
	exporter, repo, outDir := exportHarness(t)
	ctx := context.Background()

	want := exportListing("700001")
	require.NoError(t, repo.Save(ctx, want))

	path, err := exporter.ExportCSV(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, []string{
		"700001", want.Title, want.Price, want.Area, want.Rooms,
		want.Bathrooms, want.Description, want.Address, want.City,
		want.Region, want.PostalCode, want.Contact, want.SourceURL,
		want.SourceDomain, "2026-06-01T09:30:00Z", want.RawSnippet,
	}, rows[1])
}

func TestExportJSON(t *testing.T) {
	exporter, repo, _ := exportHarness(t)
	ctx := context.Background()

	want := exportListing("700002")
	require.NoError(t, repo.Save(ctx, want))

	path, err := exporter.ExportJSON(ctx, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []*entity.Listing
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestExportXLSX(t *testing.T) {
	exporter, repo, _ := exportHarness(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, exportListing("700003")))

	path, err := exporter.ExportXLSX(ctx, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExportRespectsLimit(t *testing.T) {
	exporter, repo, _ := exportHarness(t)
	ctx := context.Background()

	for _, id := range []string{"800001", "800002", "800003"} {
		require.NoError(t, repo.Save(ctx, exportListing(id)))
	}

	path, err := exporter.ExportJSON(ctx, 2)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []*entity.Listing
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 2)
}

func TestExportEmptyStore(t *testing.T) {
	exporter, _, _ := exportHarness(t)

	path, err := exporter.ExportCSV(context.Background(), 0)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, exportColumns, rows[0])
}
