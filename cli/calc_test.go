package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/billbatista/acasinha-quotes/config"
	"github.com/billbatista/acasinha-quotes/export"
	"github.com/billbatista/acasinha-quotes/quote"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		raw  string
		want quote.LineItem
	}{
		{"Tile;2;1,000", quote.LineItem{Description: "Tile", Quantity: "2", UnitPrice: "1,000"}},
		{"Grout; 3 ; 500 ;white", quote.LineItem{Description: "Grout", Quantity: "3", UnitPrice: "500", Remarks: "white"}},
		{"Labour", quote.LineItem{Description: "Labour"}},
		{"Note;1;0;a;b", quote.LineItem{Description: "Note", Quantity: "1", UnitPrice: "0", Remarks: "a;b"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseItem(tt.raw); got != tt.want {
				t.Errorf("parseItem(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestReadItems(t *testing.T) {
	data := `description,quantity,unit_price,remarks
Tile,2,"1,000",
Grout,3,500,white
"Tile; glossy",2,"1,000",note;ask for samples
Labour,1
`
	items, err := readItems(strings.NewReader(data))
	if err != nil {
		t.Fatalf("readItems() error: %v", err)
	}

	want := []quote.LineItem{
		{Description: "Tile", Quantity: "2", UnitPrice: "1,000"},
		{Description: "Grout", Quantity: "3", UnitPrice: "500", Remarks: "white"},
		{Description: "Tile; glossy", Quantity: "2", UnitPrice: "1,000", Remarks: "note;ask for samples"},
		{Description: "Labour", Quantity: "1"},
	}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d (header skipped)", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestReadItems_Malformed(t *testing.T) {
	if _, err := readItems(strings.NewReader("Tile,\"2\n")); err == nil {
		t.Error("expected an error for an unterminated quote")
	}
}

func TestBuildSheet_Defaults(t *testing.T) {
	cfg := config.Default()
	sheet := buildSheet(cfg, []quote.LineItem{{Description: "Labour"}, {Description: "Tile", Quantity: "2", UnitPrice: "1000"}})

	lines := sheet.Lines()
	if lines[0].Quantity != "1" || lines[0].UnitPrice != "0" {
		t.Errorf("line 1 = %+v, want defaults", lines[0])
	}
	if got := sheet.Totals().GrandDisplay; got != "2,000원" {
		t.Errorf("grand = %q, want 2,000원", got)
	}
}

func TestPrintSheet(t *testing.T) {
	sheet := buildSheet(config.Default(), []quote.LineItem{
		{Description: "Tile", Quantity: "2", UnitPrice: "1,000"},
		{Description: "Grout", Quantity: "3", UnitPrice: "500", Remarks: "white"},
	})
	sheet.Header = quote.Header{Date: "2026-10-18", Recipient: "Kim"}

	var buf bytes.Buffer
	if err := printSheet(&buf, sheet); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"일자: 2026-10-18", "수신: Kim", "2,000", "1,500", "white", "합계: 3,500원"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "공급자") {
		t.Error("empty issuer should not be printed")
	}
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"견적서.png", export.FormatPNG, false},
		{"out/QUOTE.PDF", export.FormatPDF, false},
		{"quote.gif", "", true},
		{"quote", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := exportFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exportFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("exportFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCalcCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "quote.png")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{
		"calc",
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"-i", "Tile;2;1,000",
		"-i", "Grout;3;500;white",
		"--date", "2026-10-18",
		"-o", out,
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := Execute(); err != nil {
		t.Fatalf("Execute() error: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "합계: 3,500원") {
		t.Errorf("output missing grand total:\n%s", buf.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("export is not a PNG")
	}
}
