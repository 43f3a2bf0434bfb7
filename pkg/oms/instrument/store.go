package instrument

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

type symbolKey struct {
	symbol   string
	exchange model.Exchange
}

type securityKey struct {
	securityID string
	exchange   model.Exchange
}

type contractKey struct {
	name     string
	exchange model.Exchange
	expiry   string
	strike   string
	option   model.OptionType
}

// table is immutable once published.
type table struct {
	rows       []model.Instrument
	bySymbol   map[symbolKey]int
	bySecurity map[securityKey]int
	byContract map[contractKey]int
	loadedAt   time.Time
	source     string
}

func newContractKey(name string, exchange model.Exchange, expiry string, strike decimal.Decimal, option model.OptionType) contractKey {
	return contractKey{
		name:     normalize(name),
		exchange: exchange,
		expiry:   expiry,
		strike:   strike.String(),
		option:   model.OptionType(normalize(string(option))),
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func buildTable(rows []model.Instrument, source string, now time.Time) *table {
	t := &table{
		rows:       make([]model.Instrument, 0, len(rows)),
		bySymbol:   make(map[symbolKey]int, len(rows)),
		bySecurity: make(map[securityKey]int, len(rows)),
		byContract: make(map[contractKey]int),
		loadedAt:   now,
		source:     source,
	}

	for _, row := range rows {
		row.Symbol = normalize(row.Symbol)
		row.Underlying = normalize(row.Underlying)
		if row.Segment == "" {
			row.Segment, _ = ToSegment(row.Exchange)
		}
		if row.LotSize <= 0 {
			row.LotSize = 1
		}
		// first row wins on duplicate keys
		secKey := securityKey{securityID: row.SecurityID, exchange: row.Exchange}
		if _, dup := t.bySecurity[secKey]; dup {
			continue
		}
		idx := len(t.rows)
		t.rows = append(t.rows, row)
		if row.SecurityID != "" {
			t.bySecurity[secKey] = idx
		}

		sk := symbolKey{symbol: row.Symbol, exchange: row.Exchange}
		if _, ok := t.bySymbol[sk]; !ok && row.Symbol != "" {
			t.bySymbol[sk] = idx
		}
		if row.Expiry == "" {
			// cash rows are also reachable by their underlying ticker
			uk := symbolKey{symbol: row.Underlying, exchange: row.Exchange}
			if _, ok := t.bySymbol[uk]; !ok && row.Underlying != "" {
				t.bySymbol[uk] = idx
			}
			continue
		}
		for _, name := range []string{row.Underlying, row.Symbol} {
			if name == "" {
				continue
			}
			ck := newContractKey(name, row.Exchange, row.Expiry, row.Strike, row.OptionType)
			if _, ok := t.byContract[ck]; !ok {
				t.byContract[ck] = idx
			}
		}
	}
	return t
}

// Store is the in-memory instrument table. Lookups never lock; Load and
// Replace publish a fully built table with a single pointer swap.
type Store struct {
	current atomic.Pointer[table]
	now     func() time.Time
}

func NewStore() *Store {
	s := &Store{now: time.Now}
	s.current.Store(buildTable(nil, "", time.Time{}))
	return s
}

// Load fetches every row from src and replaces the whole table. On failure
// the previous table stays in place.
func (s *Store) Load(ctx context.Context, src Source) error {
	if src == nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, ErrNoSource)
	}
	rows, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, src.Name(), err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s returned no instruments", ErrLoadFailed, src.Name())
	}
	s.Replace(src.Name(), rows)
	return nil
}

func (s *Store) Replace(source string, rows []model.Instrument) {
	s.current.Store(buildTable(rows, source, s.now()))
}

func (s *Store) Lookup(symbol string, exchange model.Exchange) (model.Instrument, error) {
	t := s.current.Load()
	idx, ok := t.bySymbol[symbolKey{symbol: normalize(symbol), exchange: exchange}]
	if !ok {
		return model.Instrument{}, ErrNotFound
	}
	return t.rows[idx], nil
}

// LookupContract finds a derivative by underlying (or trading symbol),
// expiry, strike and option type.
func (s *Store) LookupContract(name string, exchange model.Exchange, spec model.ContractSpec) (model.Instrument, error) {
	t := s.current.Load()
	idx, ok := t.byContract[newContractKey(name, exchange, spec.Expiry, spec.Strike, spec.OptionType)]
	if !ok {
		return model.Instrument{}, ErrNotFound
	}
	return t.rows[idx], nil
}

func (s *Store) LookupSecurityID(securityID string, exchange model.Exchange) (model.Instrument, error) {
	t := s.current.Load()
	idx, ok := t.bySecurity[securityKey{securityID: strings.TrimSpace(securityID), exchange: exchange}]
	if !ok {
		return model.Instrument{}, ErrNotFound
	}
	return t.rows[idx], nil
}

func (s *Store) Len() int {
	return len(s.current.Load().rows)
}

func (s *Store) LoadedAt() time.Time {
	return s.current.Load().loadedAt
}

func (s *Store) Source() string {
	return s.current.Load().source
}

// Snapshot returns a copy of every row in load order.
func (s *Store) Snapshot() []model.Instrument {
	rows := s.current.Load().rows
	out := make([]model.Instrument, len(rows))
	copy(out, rows)
	return out
}
