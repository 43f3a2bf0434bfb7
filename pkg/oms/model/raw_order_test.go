package model

import (
	"encoding/json"
	"testing"
)

func TestRawOrderToRequest(t *testing.T) {
	var raw RawOrder
	body := `{"symbol":" hdfcbank ","exchange":"nse","transaction_type":"buy","quantity":10,"order_type":"limit","price":"1500","product_type":"cnc","target_price":1600,"stop_loss_price":"1400","trailing_jump":10,"tag":" t-1 "}`
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatal(err)
	}

	req := raw.ToRequest()
	if req.Symbol != "HDFCBANK" || req.Exchange != ExchangeNSE || req.TransactionType != TransactionTypeBuy || req.OrderType != OrderTypeLimit || req.ProductType != ProductTypeCNC {
		t.Errorf("codes not normalized: %+v", req)
	}
	if !req.HasPrice() || req.Price.Decimal.String() != "1500" {
		t.Errorf("unexpected price %v", req.Price)
	}
	if req.Category != OrderCategorySuper || req.Tag != "t-1" || req.Contract != nil {
		t.Errorf("unexpected defaults %+v", req)
	}
	if !req.IsTrailing() {
		t.Error("trailing jump 10 should be trailing")
	}
}

func TestRawOrderToRequestMarketAndContract(t *testing.T) {
	var raw RawOrder
	body := `{"symbol":"NIFTY","exchange":"NFO","transaction_type":"SELL","quantity":75,"order_type":"MARKET","product_type":"MARGIN","target_price":24800,"stop_loss_price":25200,"expiry":"2026-10-27","strike":25000,"option_type":"ce","order_category":"cover"}`
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatal(err)
	}

	req := raw.ToRequest()
	if req.HasPrice() {
		t.Error("MARKET order without price must stay unpriced")
	}
	if req.Contract == nil || req.Contract.Expiry != "2026-10-27" || req.Contract.Strike.String() != "25000" || req.Contract.OptionType != OptionTypeCall {
		t.Errorf("unexpected contract %+v", req.Contract)
	}
	if req.Category != "COVER" {
		t.Errorf("unknown category must be kept for validation, got %s", req.Category)
	}
}
