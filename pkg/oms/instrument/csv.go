package instrument

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

const (
	colExchange   = "EXCH_ID"
	colSegment    = "SEGMENT"
	colSecurityID = "SECURITY_ID"
	colInstrument = "INSTRUMENT"
	colUnderlying = "UNDERLYING_SYMBOL"
	colSymbol     = "SYMBOL_NAME"
	colLotSize    = "LOT_SIZE"
	colExpiry     = "SM_EXPIRY_DATE"
	colStrike     = "STRIKE_PRICE"
	colOptionType = "OPTION_TYPE"
	colTickSize   = "TICK_SIZE"
)

var requiredColumns = []string{
	colExchange, colSegment, colSecurityID, colInstrument, colUnderlying,
	colSymbol, colLotSize, colExpiry, colStrike, colOptionType,
}

// exchangeFor derives the order exchange code from the master's EXCH_ID and
// SEGMENT letter (E equity, D derivative, C currency, M commodity).
func exchangeFor(exchID, segment string) (model.Exchange, bool) {
	switch exchID + "/" + segment {
	case "NSE/E":
		return model.ExchangeNSE, true
	case "BSE/E":
		return model.ExchangeBSE, true
	case "NSE/D":
		return model.ExchangeNFO, true
	case "BSE/D":
		return model.ExchangeBFO, true
	case "NSE/C":
		return model.ExchangeCDS, true
	case "BSE/C":
		return model.ExchangeBCD, true
	case "MCX/M", "MCX/D":
		return model.ExchangeMCX, true
	}
	return "", false
}

// ParseDhanCSV reads Dhan's detailed scrip master. Rows without a security id
// or symbol and rows on exchanges outside model.Exchange are skipped.
func ParseDhanCSV(r io.Reader) ([]model.Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrLoadFailed, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrLoadFailed, name)
		}
	}

	var rows []model.Instrument
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrLoadFailed, line, err)
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		exchange, ok := exchangeFor(normalize(get(colExchange)), normalize(get(colSegment)))
		if !ok {
			continue
		}
		securityID := get(colSecurityID)
		symbol := normalize(get(colSymbol))
		if securityID == "" || symbol == "" {
			continue
		}

		inst := model.Instrument{
			SecurityID:     securityID,
			Symbol:         symbol,
			Exchange:       exchange,
			LotSize:        parseLotSize(get(colLotSize)),
			InstrumentType: normalize(get(colInstrument)),
			Underlying:     cleanNA(normalize(get(colUnderlying))),
			Expiry:         parseExpiry(get(colExpiry)),
			OptionType:     parseOptionType(get(colOptionType)),
		}
		inst.Segment, _ = ToSegment(exchange)
		if strike, err := decimal.NewFromString(get(colStrike)); err == nil && strike.IsPositive() {
			inst.Strike = strike
		}
		if tick, err := decimal.NewFromString(get(colTickSize)); err == nil && tick.IsPositive() {
			inst.TickSize = tick
		}
		rows = append(rows, inst)
	}
	return rows, nil
}

func parseLotSize(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 {
		return 1
	}
	return int64(f)
}

// parseExpiry keeps the date part; the master uses -1 or a zero year for
// instruments that never expire.
func parseExpiry(s string) string {
	if s == "" || s == "-1" || strings.HasPrefix(s, "0001") || strings.EqualFold(s, "NA") {
		return ""
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}

func parseOptionType(s string) model.OptionType {
	switch t := model.OptionType(normalize(s)); t {
	case model.OptionTypeCall, model.OptionTypePut:
		return t
	}
	return ""
}

func cleanNA(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}
