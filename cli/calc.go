package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/billbatista/acasinha-quotes/config"
	"github.com/billbatista/acasinha-quotes/export"
	"github.com/billbatista/acasinha-quotes/quote"
)

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringArrayP("item", "i", nil, `Line item as "description;quantity;unit price;remarks" (repeatable)`)
	calcCmd.Flags().String("csv", "", "CSV file with description,quantity,unit_price,remarks rows")
	calcCmd.Flags().String("date", "", "Quote date (YYYY-MM-DD, default today)")
	calcCmd.Flags().String("issuer", "", "Issuer block")
	calcCmd.Flags().String("recipient", "", "Recipient")
	calcCmd.Flags().StringP("out", "o", "", "Also write the sheet to this .png or .pdf file")
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Total a quote sheet from the command line",
	Long: `Build a quote sheet from --item flags or a CSV file, print the line
totals and the grand total, and optionally export it as PNG or PDF.`,
	Example: `  acasinha-quotes calc -i "Tile;2;1,000" -i "Grout;3;500;white"
  acasinha-quotes calc --csv items.csv -o 견적서.png`,
	RunE: runCalc,
}

var errNoItems = errors.New("no line items: use --item or --csv")

func runCalc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rawItems, _ := cmd.Flags().GetStringArray("item")
	items := make([]quote.LineItem, 0, len(rawItems))
	for _, raw := range rawItems {
		items = append(items, parseItem(raw))
	}
	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening csv: %w", err)
		}
		defer f.Close()
		fromCSV, err := readItems(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		items = append(items, fromCSV...)
	}
	if len(items) == 0 {
		return errNoItems
	}

	sheet := buildSheet(cfg, items)
	date, _ := cmd.Flags().GetString("date")
	issuer, _ := cmd.Flags().GetString("issuer")
	recipient, _ := cmd.Flags().GetString("recipient")
	if date != "" {
		sheet.Header.Date = date
	}
	sheet.Header.Issuer = issuer
	sheet.Header.Recipient = recipient

	if err := printSheet(cmd.OutOrStdout(), sheet); err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return nil
	}
	return writeExport(cmd, cfg, sheet, out)
}

// parseItem splits "description;quantity;unit price;remarks". Missing
// trailing parts stay empty.
func parseItem(raw string) quote.LineItem {
	return itemFromFields(strings.SplitN(raw, ";", 4))
}

// itemFromFields maps description, quantity, unit price and remarks by
// position. Missing fields stay empty and extra fields are ignored.
func itemFromFields(fields []string) quote.LineItem {
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	return quote.LineItem{
		Description: field(0),
		Quantity:    field(1),
		UnitPrice:   field(2),
		Remarks:     field(3),
	}
}

// readItems reads description,quantity,unit_price,remarks records. A first
// row naming the columns is skipped.
func readItems(r io.Reader) ([]quote.LineItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	items := make([]quote.LineItem, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && isHeaderCell(rec[0]) {
			continue
		}
		items = append(items, itemFromFields(rec))
	}
	return items, nil
}

func isHeaderCell(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "description" || s == "품명"
}

// buildSheet fills empty numeric fields with the configured defaults.
func buildSheet(cfg config.Config, items []quote.LineItem) *quote.Sheet {
	norm := quote.NewNormalizer(cfg.LanguageTag(), cfg.Locale.CurrencySuffix)
	for i := range items {
		if items[i].Quantity == "" {
			items[i].Quantity = cfg.Sheet.DefaultQuantity
		}
		if items[i].UnitPrice == "" {
			items[i].UnitPrice = cfg.Sheet.DefaultUnitPrice
		}
	}
	sheet := quote.NewSheet(norm, quote.WithDefaults(cfg.Sheet.DefaultQuantity, cfg.Sheet.DefaultUnitPrice))
	sheet.Replace(items)
	return sheet
}

func printSheet(w io.Writer, sheet *quote.Sheet) error {
	h := sheet.Header
	fmt.Fprintf(w, "일자: %s\n", h.Date)
	if h.Issuer != "" {
		fmt.Fprintf(w, "공급자: %s\n", h.Issuer)
	}
	if h.Recipient != "" {
		fmt.Fprintf(w, "수신: %s\n", h.Recipient)
	}
	fmt.Fprintln(w)

	totals := sheet.Totals()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "No\t품명\t수량\t단가\t금액\t비고\t")
	for i, l := range sheet.Lines() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			l.Index, l.Description, l.Quantity, l.UnitPrice, totals.Lines[i].Display, l.Remarks)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n합계: %s\n", totals.GrandDisplay)
	return err
}

// exportFormat picks the renderer from the output file extension.
func exportFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return export.FormatPNG, nil
	case ".pdf":
		return export.FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported output %q: use .png or .pdf", path)
	}
}

func writeExport(cmd *cobra.Command, cfg config.Config, sheet *quote.Sheet, path string) error {
	format, err := exportFormat(path)
	if err != nil {
		return err
	}
	renderer, err := export.NewRenderer(format, cfg.Export.FontPath, cfg.Export.Scale)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	capturer := export.NewCapturer(renderer, export.WithLabel(cfg.Export.Label), export.WithLogger(logger))
	res, err := capturer.Capture(cmd.Context(), export.NewView(cfg.Export.Label, sheet))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, res.Artifact.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
