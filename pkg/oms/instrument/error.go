package instrument

import (
	"errors"
	"fmt"

	"github.com/joripage/superorder/pkg/oms/model"
)

var (
	ErrNotFound   = errors.New("instrument not found")
	ErrLoadFailed = errors.New("instrument load failed")
	ErrNoSource   = errors.New("no instrument source configured")
)

// NotFoundError is returned by Resolver when a symbol/exchange pair is not
// in the current table.
type NotFoundError struct {
	Symbol   string
	Exchange model.Exchange
	Contract *model.ContractSpec
}

func (e *NotFoundError) Error() string {
	if e.Contract != nil {
		return fmt.Sprintf("instrument %s %s expiry=%s strike=%s option=%s not found",
			e.Symbol, e.Exchange, e.Contract.Expiry, e.Contract.Strike, e.Contract.OptionType)
	}
	return fmt.Sprintf("instrument %s on %s not found", e.Symbol, e.Exchange)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func (e *NotFoundError) Kind() model.ErrorKind {
	return model.ErrorKindInstrumentNotFound
}
