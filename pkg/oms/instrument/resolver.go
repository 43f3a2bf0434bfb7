package instrument

import (
	"errors"

	"github.com/joripage/superorder/pkg/oms/model"
)

type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve finds the instrument for an order. A contract spec switches the
// lookup to the derivative index. Misses come back as *NotFoundError.
func (r *Resolver) Resolve(symbol string, exchange model.Exchange, contract *model.ContractSpec) (model.Instrument, error) {
	var (
		inst model.Instrument
		err  error
	)
	if contract != nil {
		inst, err = r.store.LookupContract(symbol, exchange, *contract)
	} else {
		inst, err = r.store.Lookup(symbol, exchange)
	}
	if errors.Is(err, ErrNotFound) {
		return model.Instrument{}, &NotFoundError{Symbol: normalize(symbol), Exchange: exchange, Contract: contract}
	}
	if err != nil {
		return model.Instrument{}, err
	}
	return inst, nil
}

func (r *Resolver) ToSegment(exchange model.Exchange) (model.ExchangeSegment, bool) {
	return ToSegment(exchange)
}
