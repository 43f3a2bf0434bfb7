package riskrule

import (
	"fmt"
	"regexp"

	"github.com/joripage/superorder/pkg/oms/instrument"
	"github.com/joripage/superorder/pkg/oms/model"
)

const DefaultTagPattern = `^[A-Za-z0-9_-]{1,25}$`

var dhanProducts = map[model.ProductType]struct{}{
	model.ProductTypeCNC:      {},
	model.ProductTypeIntraday: {},
	model.ProductTypeMargin:   {},
	model.ProductTypeMTF:      {},
}

type BrokerOptions struct {
	// TagPattern overrides DefaultTagPattern.
	TagPattern string
	TickSize   *TickSizeRule
}

// DhanStage holds the checks specific to Dhan but shared by every Dhan order
// type.
func DhanStage(opts BrokerOptions) (Stage, error) {
	pattern := opts.TagPattern
	if pattern == "" {
		pattern = DefaultTagPattern
	}
	tagRe, err := regexp.Compile(pattern)
	if err != nil {
		return Stage{}, fmt.Errorf("compile tag pattern: %w", err)
	}

	rules := []RiskRule{
		RuleFunc(checkSupportedExchange),
		RuleFunc(checkProductType),
		RuleFunc(checkSymbol),
		tagRule{re: tagRe},
	}
	if opts.TickSize != nil {
		rules = append(rules, opts.TickSize)
	}

	return Stage{Name: StageBroker, Rules: rules}, nil
}

func checkSupportedExchange(in *Input) []Violation {
	if _, ok := instrument.ToSegment(in.Order.Exchange); !ok {
		return []Violation{structural(fmt.Sprintf("exchange %q is not supported by Dhan", in.Order.Exchange), "exchange")}
	}
	return nil
}

func checkProductType(in *Input) []Violation {
	if _, ok := dhanProducts[in.Order.ProductType]; !ok {
		return []Violation{structural(fmt.Sprintf("product_type %q must be one of CNC, INTRADAY, MARGIN, MTF", in.Order.ProductType), "product_type")}
	}
	return nil
}

func checkSymbol(in *Input) []Violation {
	if in.Order.Symbol == "" {
		return []Violation{structural("symbol must not be empty", "symbol")}
	}
	return nil
}

type tagRule struct {
	re *regexp.Regexp
}

func (r tagRule) Check(in *Input) []Violation {
	tag := in.Order.Tag
	if tag == "" || r.re.MatchString(tag) {
		return nil
	}
	return []Violation{structural(fmt.Sprintf("tag %q does not match %s", tag, r.re.String()), "tag")}
}
