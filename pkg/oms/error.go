package oms

import (
	"errors"
	"fmt"

	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
	riskrule "github.com/joripage/superorder/pkg/oms/risk_rule"
)

var (
	// ErrInstrumentNotFound matches every unresolved symbol via errors.Is.
	ErrInstrumentNotFound = instrument.ErrNotFound

	ErrBatchClosed = errors.New("batch placer closed")

	errNilOrder = errors.New("order request is nil")
	errNoResult = errors.New("gateway returned no result")
)

// TransportError wraps a failure of the submission collaborator with the
// order it was placing.
type TransportError struct {
	CorrelationID string
	Symbol        string
	Exchange      model.Exchange
	Err           error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("submit super order symbol=%s exchange=%s tag=%q: %v", e.Symbol, e.Exchange, e.CorrelationID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf classifies an error returned by PlaceSuperOrder. It returns "" for
// errors this package did not produce.
func KindOf(err error) model.ErrorKind {
	var (
		validationErr *riskrule.ValidationError
		notFoundErr   *instrument.NotFoundError
		transportErr  *TransportError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Kind()
	case errors.As(err, &notFoundErr), errors.Is(err, instrument.ErrNotFound):
		return model.ErrorKindInstrumentNotFound
	case errors.As(err, &transportErr):
		return model.ErrorKindTransport
	}
	return ""
}
