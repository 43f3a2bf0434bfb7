package instrument

import "github.com/joripage/superorder/pkg/oms/model"

var segments = map[model.Exchange]model.ExchangeSegment{
	model.ExchangeNSE: model.SegmentNSEEquity,
	model.ExchangeBSE: model.SegmentBSEEquity,
	model.ExchangeNFO: model.SegmentNSEFNO,
	model.ExchangeBFO: model.SegmentBSEFNO,
	model.ExchangeMCX: model.SegmentMCX,
}

// ToSegment maps an exchange to the Dhan exchange segment. ok is false for
// exchanges Dhan super orders do not support.
func ToSegment(exchange model.Exchange) (model.ExchangeSegment, bool) {
	seg, ok := segments[exchange]
	return seg, ok
}

// SupportedExchanges lists the exchanges ToSegment accepts.
func SupportedExchanges() []model.Exchange {
	return []model.Exchange{
		model.ExchangeNSE,
		model.ExchangeBSE,
		model.ExchangeNFO,
		model.ExchangeBFO,
		model.ExchangeMCX,
	}
}
