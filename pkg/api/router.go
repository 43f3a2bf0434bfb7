// Package api exposes the super order pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/joripage/superorder/pkg/logging"
	"github.com/joripage/superorder/pkg/oms"
	"github.com/joripage/superorder/pkg/oms/model"
	riskrule "github.com/joripage/superorder/pkg/oms/risk_rule"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type batchPlacer interface {
	PlaceAll(ctx context.Context, reqs []*model.OrderRequest) []oms.BatchResult
}

type instrumentLookup interface {
	Lookup(symbol string, exchange model.Exchange) (model.Instrument, error)
	Len() int
}

type Handler struct {
	oms     oms.IOMS
	batch   batchPlacer
	store   instrumentLookup
	metrics http.Handler
	logger  *logging.Logger
}

func NewHandler(o oms.IOMS, batch batchPlacer, store instrumentLookup, metrics http.Handler, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{oms: o, batch: batch, store: store, metrics: metrics, logger: logger}
}

// NewRouter sets up HTTP routes for the API server.
func (h *Handler) NewRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("POST /v1/super-orders", h.place)
	mux.HandleFunc("POST /v1/super-orders/validate", h.validate)
	mux.HandleFunc("POST /v1/super-orders/batch", h.placeBatch)
	mux.HandleFunc("GET /v1/instruments/{exchange}/{symbol}", h.lookupInstrument)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}

	return mux
}

type errorBody struct {
	Kind       model.ErrorKind      `json:"kind"`
	Stage      string               `json:"stage,omitempty"`
	Message    string               `json:"message"`
	Violations []riskrule.Violation `json:"violations,omitempty"`
}

type batchItem struct {
	Index  int                     `json:"index"`
	Result *model.SubmissionResult `json:"result,omitempty"`
	Error  *errorBody              `json:"error,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}
	if h.store != nil {
		body["instruments"] = h.store.Len()
		if h.store.Len() == 0 {
			status = http.StatusServiceUnavailable
			body["status"] = "instruments not loaded"
		}
	}
	writeJSON(w, status, body)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}
	res, err := h.oms.PlaceSuperOrder(ctx, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}
	payload, err := h.oms.ValidateOnly(ctx, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) placeBatch(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	var raws []model.RawOrder
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raws); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: model.ErrorKindStructural, Message: "invalid json: " + err.Error()})
		return
	}
	reqs := make([]*model.OrderRequest, len(raws))
	for i := range raws {
		reqs[i] = raws[i].ToRequest()
	}

	results := h.batch.PlaceAll(ctx, reqs)
	out := make([]batchItem, len(results))
	for i, res := range results {
		out[i] = batchItem{Index: res.Index, Result: res.Result}
		if res.Err != nil {
			_, body := errorResponse(res.Err)
			out[i].Error = &body
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) lookupInstrument(w http.ResponseWriter, r *http.Request) {
	exchange := model.Exchange(strings.ToUpper(r.PathValue("exchange")))
	inst, err := h.store.Lookup(r.PathValue("symbol"), exchange)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *Handler) requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if id := r.Header.Get("X-Request-ID"); id != "" {
		ctx = logging.WithRequestID(ctx, id)
	}
	return logging.WithLogger(ctx, h.logger)
}

func (h *Handler) decodeOrder(w http.ResponseWriter, r *http.Request) (*model.OrderRequest, bool) {
	var raw model.RawOrder
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: model.ErrorKindStructural, Message: "invalid json: " + err.Error()})
		return nil, false
	}
	return raw.ToRequest(), true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.Zap().Warn("request failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, errorBody) {
	body := errorBody{Kind: oms.KindOf(err), Message: err.Error()}

	var verr *riskrule.ValidationError
	if errors.As(err, &verr) {
		body.Stage = verr.Stage
		body.Violations = verr.Violations
		return http.StatusUnprocessableEntity, body
	}
	switch body.Kind {
	case model.ErrorKindInstrumentNotFound:
		return http.StatusNotFound, body
	case model.ErrorKindTransport:
		return http.StatusBadGateway, body
	}
	return http.StatusInternalServerError, body
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
