package instrument

import (
	"errors"
	"strings"
	"testing"

	"github.com/joripage/superorder/pkg/oms/model"
)

func TestParseDhanCSV(t *testing.T) {
	rows := loadFixture(t)
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(rows))
	}

	byID := map[string]model.Instrument{}
	for _, r := range rows {
		byID[r.SecurityID] = r
	}

	hdfc := byID["1333"]
	if hdfc.Exchange != model.ExchangeNSE || hdfc.Underlying != "HDFCBANK" || hdfc.Expiry != "" || hdfc.OptionType != "" {
		t.Errorf("unexpected equity row %+v", hdfc)
	}
	if !hdfc.Strike.IsZero() {
		t.Errorf("negative strike must be dropped, got %s", hdfc.Strike)
	}

	call := byID["35002"]
	if call.Exchange != model.ExchangeNFO || call.Expiry != "2026-10-27" || call.OptionType != model.OptionTypeCall || call.LotSize != 75 {
		t.Errorf("unexpected option row %+v", call)
	}
	if call.Strike.String() != "25000" {
		t.Errorf("unexpected strike %s", call.Strike)
	}

	if byID["426000"].Exchange != model.ExchangeMCX {
		t.Errorf("expected MCX commodity, got %+v", byID["426000"])
	}
	if byID["1001"].Exchange != model.ExchangeCDS {
		t.Errorf("expected CDS currency, got %+v", byID["1001"])
	}
	if _, ok := byID["13"]; ok {
		t.Error("index rows must be skipped")
	}
}

func TestParseDhanCSVHeaderVariants(t *testing.T) {
	data := "\ufeffexch_id,segment,security_id,instrument,underlying_symbol,symbol_name,lot_size,sm_expiry_date,strike_price,option_type\n" +
		"NSE,E,11536,EQUITY,TCS,TATA CONSULTANCY SERV LT,1,-1,0,XX\n"
	rows, err := ParseDhanCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].SecurityID != "11536" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if !rows[0].TickSize.IsZero() {
		t.Errorf("missing TICK_SIZE column should leave tick size zero, got %s", rows[0].TickSize)
	}
}

func TestParseDhanCSVMissingColumn(t *testing.T) {
	_, err := ParseDhanCSV(strings.NewReader("EXCH_ID,SEGMENT,SECURITY_ID\nNSE,E,1\n"))
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing column") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestParseDhanCSVEmpty(t *testing.T) {
	if _, err := ParseDhanCSV(strings.NewReader("")); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

func TestParseHelpers(t *testing.T) {
	for in, want := range map[string]int64{"75.0": 75, "": 1, "0": 1, "abc": 1, "1800": 1800} {
		if got := parseLotSize(in); got != want {
			t.Errorf("parseLotSize(%q) = %d, want %d", in, got, want)
		}
	}
	for in, want := range map[string]string{
		"2026-10-27 14:30:00": "2026-10-27",
		"-1":                  "",
		"0001-01-01":          "",
		"NA":                  "",
		"2026-12-04":          "2026-12-04",
	} {
		if got := parseExpiry(in); got != want {
			t.Errorf("parseExpiry(%q) = %q, want %q", in, got, want)
		}
	}
	if parseOptionType("xx") != "" || parseOptionType(" ce ") != model.OptionTypeCall {
		t.Error("unexpected option type parsing")
	}
}
