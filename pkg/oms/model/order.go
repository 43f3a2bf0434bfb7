package model

type Exchange string

const (
	ExchangeNSE   Exchange = "NSE"
	ExchangeBSE   Exchange = "BSE"
	ExchangeNFO   Exchange = "NFO"
	ExchangeBFO   Exchange = "BFO"
	ExchangeMCX   Exchange = "MCX"
	ExchangeCDS   Exchange = "CDS"
	ExchangeBCD   Exchange = "BCD"
	ExchangeNCDEX Exchange = "NCDEX"
)

var knownExchanges = map[Exchange]struct{}{
	ExchangeNSE:   {},
	ExchangeBSE:   {},
	ExchangeNFO:   {},
	ExchangeBFO:   {},
	ExchangeMCX:   {},
	ExchangeCDS:   {},
	ExchangeBCD:   {},
	ExchangeNCDEX: {},
}

// Valid reports whether e is an exchange code known to the system,
// regardless of which broker supports it.
func (e Exchange) Valid() bool {
	_, ok := knownExchanges[e]
	return ok
}

// IsDerivative reports whether the exchange only lists derivative contracts.
func (e Exchange) IsDerivative() bool {
	switch e {
	case ExchangeNFO, ExchangeBFO, ExchangeMCX, ExchangeCDS, ExchangeBCD, ExchangeNCDEX:
		return true
	}
	return false
}

type ExchangeSegment string

const (
	SegmentNSEEquity ExchangeSegment = "NSE_EQ"
	SegmentBSEEquity ExchangeSegment = "BSE_EQ"
	SegmentNSEFNO    ExchangeSegment = "NSE_FNO"
	SegmentBSEFNO    ExchangeSegment = "BSE_FNO"
	SegmentMCX       ExchangeSegment = "MCX"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeBuy || t == TransactionTypeSell
}

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

type ProductType string

const (
	ProductTypeCNC      ProductType = "CNC"
	ProductTypeIntraday ProductType = "INTRADAY"
	ProductTypeMargin   ProductType = "MARGIN"
	ProductTypeMTF      ProductType = "MTF"
)

type OrderCategory string

const (
	OrderCategorySuper OrderCategory = "SUPER"
)

type OptionType string

const (
	OptionTypeCall OptionType = "CE"
	OptionTypePut  OptionType = "PE"
)

// ErrorKind classifies every failure a placement can end with.
type ErrorKind string

const (
	ErrorKindStructural         ErrorKind = "STRUCTURAL"
	ErrorKindPriceRelationship  ErrorKind = "PRICE_RELATIONSHIP"
	ErrorKindLotSize            ErrorKind = "LOT_SIZE"
	ErrorKindInstrumentNotFound ErrorKind = "INSTRUMENT_NOT_FOUND"
	ErrorKindTransport          ErrorKind = "TRANSPORT"
)
