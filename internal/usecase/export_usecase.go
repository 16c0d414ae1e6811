package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/repository"
	"github.com/xuri/excelize/v2"
)

// exportColumns is the fixed column order shared by the CSV and XLSX dumps.
var exportColumns = []string{
	"id", "title", "price", "area", "rooms", "bathrooms", "description",
	"address", "city", "region", "postal_code", "contact", "source_url",
	"source_domain", "collected_at", "raw_snippet",
}

// Exporter defines the interface for dumping the listing store to flat
// files. Each call writes one timestamped file and returns its path.
type Exporter interface {
	ExportCSV(ctx context.Context, limit int) (string, error)
	ExportJSON(ctx context.Context, limit int) (string, error)
	ExportXLSX(ctx context.Context, limit int) (string, error)
}

type exportUseCase struct {
	listingRepo repository.ListingRepository
	outputDir   string
}

// NewExporter creates the export use case writing into outputDir.
func NewExporter(listingRepo repository.ListingRepository, outputDir string) Exporter {
	return &exportUseCase{listingRepo: listingRepo, outputDir: outputDir}
}

func (uc *exportUseCase) ExportCSV(ctx context.Context, limit int) (string, error) {
	listings, path, err := uc.prepare(ctx, limit, "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportColumns); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write(listingRow(l)); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	slog.Info("Exported listings", "format", "csv", "count", len(listings), "file", path)
	return path, nil
}

func (uc *exportUseCase) ExportJSON(ctx context.Context, limit int) (string, error) {
	listings, path, err := uc.prepare(ctx, limit, "json")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal listings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}

	slog.Info("Exported listings", "format", "json", "count", len(listings), "file", path)
	return path, nil
}

func (uc *exportUseCase) ExportXLSX(ctx context.Context, limit int) (string, error) {
	listings, path, err := uc.prepare(ctx, limit, "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Listings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("write xlsx header: %w", err)
	}
	for i, l := range listings {
		row := make([]interface{}, 0, len(exportColumns))
		for _, v := range listingRow(l) {
			row = append(row, v)
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("write xlsx row: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save xlsx: %w", err)
	}

	slog.Info("Exported listings", "format", "xlsx", "count", len(listings), "file", path)
	return path, nil
}

// prepare reads the capped listing set and builds the timestamped file path.
func (uc *exportUseCase) prepare(ctx context.Context, limit int, ext string) ([]*entity.Listing, string, error) {
	listings, err := uc.listingRepo.FindAll(ctx, limit)
	if err != nil {
		return nil, "", fmt.Errorf("read listings: %w", err)
	}
	if err := os.MkdirAll(uc.outputDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("listings_%s.%s", time.Now().Format("20060102_150405"), ext)
	return listings, filepath.Join(uc.outputDir, name), nil
}

func listingRow(l *entity.Listing) []string {
	return []string{
		l.ID, l.Title, l.Price, l.Area, l.Rooms, l.Bathrooms, l.Description,
		l.Address, l.City, l.Region, l.PostalCode, l.Contact, l.SourceURL,
		l.SourceDomain, l.CollectedAt.UTC().Format(time.RFC3339), l.RawSnippet,
	}
}
