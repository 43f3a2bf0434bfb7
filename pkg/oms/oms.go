package oms

import (
	"context"
	"errors"
	"time"

	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/metrics"
	"github.com/joripage/superorder/pkg/oms/dhan"
	eventstore "github.com/joripage/superorder/pkg/oms/event_store"
	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
	riskrule "github.com/joripage/superorder/pkg/oms/risk_rule"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const stageResolve = "resolve"

// OMS validates, resolves and submits super orders. It keeps no state
// between calls apart from its collaborators, so one instance serves
// concurrent callers.
type OMS struct {
	orderGateway OrderGateway
	resolver     *instrument.Resolver
	clientID     string

	preResolve *riskrule.Pipeline
	orderType  riskrule.Stage
	policy     riskrule.MarketPolicy
	brokerOpts riskrule.BrokerOptions

	prices     PriceSource
	eventstore eventstore.EventStore
	logger     *logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*OMS)

func WithLogger(l *logging.Logger) Option {
	return func(s *OMS) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *OMS) { s.metrics = m }
}

func WithEventStore(store eventstore.EventStore) Option {
	return func(s *OMS) { s.eventstore = store }
}

func WithPriceSource(p PriceSource) Option {
	return func(s *OMS) { s.prices = p }
}

func WithMarketPolicy(p riskrule.MarketPolicy) Option {
	return func(s *OMS) { s.policy = p }
}

func WithBrokerOptions(opts riskrule.BrokerOptions) Option {
	return func(s *OMS) { s.brokerOpts = opts }
}

func NewOMS(orderGateway OrderGateway, resolver *instrument.Resolver, clientID string, opts ...Option) (*OMS, error) {
	s := &OMS{
		orderGateway: orderGateway,
		resolver:     resolver,
		clientID:     clientID,
		policy:       riskrule.MarketPolicyBracket,
		eventstore:   eventstore.NewInMemoryEventStore(),
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	broker, err := riskrule.DhanStage(s.brokerOpts)
	if err != nil {
		return nil, err
	}
	s.preResolve = riskrule.NewPipeline(riskrule.BaseStage(), broker)
	s.orderType = riskrule.SuperOrderStage(s.policy)

	return s, nil
}

func (s *OMS) EventStore() eventstore.EventStore {
	return s.eventstore
}

// PlaceSuperOrder runs the base and broker stages, resolves the instrument,
// runs the super order stage, builds the payload and submits it. Every
// failure comes back as *riskrule.ValidationError,
// *instrument.NotFoundError or *TransportError.
func (s *OMS) PlaceSuperOrder(ctx context.Context, req *model.OrderRequest) (*model.SubmissionResult, error) {
	ctx = ensureRequestID(ctx)

	payload, err := s.prepare(ctx, req)
	if err != nil {
		s.onRejected(ctx, req, err)
		return nil, err
	}

	start := s.now()
	res, err := s.orderGateway.PlaceSuperOrder(ctx, payload)
	s.metrics.ObserveSubmit(s.now().Sub(start))
	if err == nil && res == nil {
		err = errNoResult
	}
	if err != nil {
		terr := &TransportError{
			CorrelationID: req.Tag,
			Symbol:        req.Symbol,
			Exchange:      req.Exchange,
			Err:           err,
		}
		s.onFailed(ctx, req, terr)
		return nil, terr
	}

	s.onPlaced(ctx, req, res)
	return res, nil
}

// ValidateOnly runs everything up to the payload build without submitting.
func (s *OMS) ValidateOnly(ctx context.Context, req *model.OrderRequest) (*model.WirePayload, error) {
	ctx = ensureRequestID(ctx)

	payload, err := s.prepare(ctx, req)
	if err != nil {
		s.logger.Info(ctx, "dry run rejected", zap.String("symbol", symbolOf(req)), zap.Error(err))
		return nil, err
	}
	return payload, nil
}

func (s *OMS) prepare(ctx context.Context, req *model.OrderRequest) (*model.WirePayload, error) {
	if req == nil {
		return nil, &riskrule.ValidationError{
			Stage:      riskrule.StageBase,
			Violations: []riskrule.Violation{{Kind: model.ErrorKindStructural, Message: errNilOrder.Error()}},
		}
	}

	in := &riskrule.Input{Order: req}
	if err := s.preResolve.Run(in); err != nil {
		return nil, err
	}

	inst, err := s.resolver.Resolve(req.Symbol, req.Exchange, req.Contract)
	if err != nil {
		return nil, err
	}
	in.Instrument = &inst
	in.LastPrice = s.lastPrice(ctx, req, inst)

	if err := s.orderType.Run(in); err != nil {
		return nil, err
	}
	return dhan.Build(req, inst, s.clientID), nil
}

// lastPrice is only fetched for MARKET orders under the ltp policy. A failed
// fetch leaves it unset and the stage falls back to the bracket check.
func (s *OMS) lastPrice(ctx context.Context, req *model.OrderRequest, inst model.Instrument) decimal.NullDecimal {
	if s.policy != riskrule.MarketPolicyLTP || req.OrderType != model.OrderTypeMarket || s.prices == nil {
		return decimal.NullDecimal{}
	}
	segment, _ := instrument.ToSegment(req.Exchange)
	ltp, err := s.prices.LastTradedPrice(ctx, segment, inst.SecurityID)
	if err != nil {
		s.logger.Warn(ctx, "last traded price unavailable",
			zap.String("symbol", req.Symbol),
			zap.String("security_id", inst.SecurityID),
			zap.Error(err))
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(ltp)
}

func (s *OMS) onRejected(ctx context.Context, req *model.OrderRequest, err error) {
	stage := stageResolve
	var verr *riskrule.ValidationError
	if errors.As(err, &verr) {
		stage = verr.Stage
	}
	kind := KindOf(err)

	s.metrics.ObserveReject(stage, string(kind))
	s.metrics.ObservePlacement("rejected")
	s.logger.Info(ctx, "super order rejected",
		zap.String("symbol", symbolOf(req)),
		zap.String("stage", stage),
		zap.String("kind", string(kind)),
		zap.Error(err))

	if req == nil {
		return
	}
	ev := model.NewPlacementEvent(logging.RequestID(ctx), req, model.PlacementEventRejected, s.now())
	ev.Stage = stage
	ev.ErrorKind = kind
	ev.Message = err.Error()
	s.eventstore.AddEvent(ctx, ev)
}

func (s *OMS) onFailed(ctx context.Context, req *model.OrderRequest, err *TransportError) {
	s.metrics.ObservePlacement("failed")
	s.logger.Error(ctx, "super order submission failed",
		zap.String("symbol", req.Symbol),
		zap.String("tag", req.Tag),
		zap.Error(err))

	ev := model.NewPlacementEvent(logging.RequestID(ctx), req, model.PlacementEventFailed, s.now())
	ev.ErrorKind = model.ErrorKindTransport
	ev.Message = err.Error()
	s.eventstore.AddEvent(ctx, ev)
}

func (s *OMS) onPlaced(ctx context.Context, req *model.OrderRequest, res *model.SubmissionResult) {
	s.metrics.ObservePlacement("placed")
	s.logger.Info(ctx, "super order placed",
		zap.String("symbol", req.Symbol),
		zap.String("order_id", res.OrderID),
		zap.String("order_status", res.OrderStatus))

	ev := model.NewPlacementEvent(logging.RequestID(ctx), req, model.PlacementEventPlaced, s.now())
	ev.OrderID = res.OrderID
	ev.OrderStatus = res.OrderStatus
	s.eventstore.AddEvent(ctx, ev)
}

func ensureRequestID(ctx context.Context) context.Context {
	if logging.HasRequestID(ctx) {
		return ctx
	}
	return logging.WithRequestID(ctx, logging.NewRequestID())
}

func symbolOf(req *model.OrderRequest) string {
	if req == nil {
		return ""
	}
	return req.Symbol
}
