// Package stockparser implements C4: per-supplier spreadsheet parsers that
// turn raw attachment bytes into normalized model.Stock records, plus the
// string-hygiene pass applied uniformly to every parser's output.
package stockparser

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/stockmail"
	"github.com/floorsync/core/pkg/fault"
)

// Parser turns one opened workbook into zero or more Stock records.
// Invalid rows are skipped rather than aborting the whole sheet.
type Parser func(wb *excelize.File) []model.Stock

// registry is the dispatch table from supplier tag to parser, mirroring the
// original's match-on-supplier-string dispatch in stock_service/parser/mod.rs.
//
// "vvk" (Vendor B's cloud-drive feed, §4.3) has no entry: the original's own
// vvk.rs parser module was referenced from parser/mod.rs but its source was
// never available to derive a column layout from, so its fetches fall
// through the registry miss below rather than run against guessed columns.
var registry = map[string]Parser{
	"fox":        parseFox,
	"fenix":      parseFenix,
	"opus":       parseOpus,
	"sf":         parseSF,
	"zefir":      parseZefir,
	"fancy":      parseFancy,
	"ortgraph":   parseOrtgraph,
	"carpetland": parseCarpetland,
}

// FanOut dispatches every (supplier, blob) pair in fetches to its
// supplier-specific parser, applies string hygiene, and collects everything
// into a single slice. Per-blob failures are recorded on errs and do not
// abort the rest of the batch.
func FanOut(ctx context.Context, fetches map[string]stockmail.Fetch, errs *fault.Bus) []model.Stock {
	log := logger.Ctx(ctx)

	var out []model.Stock

	for supplier, fetch := range fetches {
		parse, ok := registry[supplier]
		if !ok {
			log.Infow("no parser registered for supplier", "supplier", supplier)
			continue
		}

		for _, blob := range fetch.Blobs {
			wb, err := excelize.OpenReader(bytes.NewReader(blob.Data))
			if err != nil {
				errs.AddRecoverable(ctx, fault.Wrap(err, "opening workbook"))
				continue
			}

			records := parse(wb)
			_ = wb.Close()

			for _, r := range records {
				r.Supplier = supplier
				r.UpdatedAt = fetch.ReceivedAt
				r = hygiene(r)

				if r.Name == "" {
					errs.AddSkip(ctx, fault.Skipped{Namespace: "stockparser", ID: blob.Filename, Reason: "empty name after hygiene"})
					continue
				}

				out = append(out, r)
			}
		}
	}

	return out
}

// sheetRows returns the rows of a workbook's first sheet, or nil if it
// cannot be read.
func sheetRows(wb *excelize.File) [][]string {
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil
	}

	return rows
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}
