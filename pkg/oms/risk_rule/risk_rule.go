package riskrule

import (
	"fmt"
	"strings"

	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
)

const (
	StageBase       = "base"
	StageBroker     = "broker"
	StageSuperOrder = "super_order"
)

// Input is what every rule sees. Instrument is nil until the symbol has been
// resolved; LastPrice is only set when a market price was fetched.
type Input struct {
	Order      *model.OrderRequest
	Instrument *model.Instrument
	LastPrice  decimal.NullDecimal
}

type Violation struct {
	Kind    model.ErrorKind `json:"kind"`
	Fields  []string        `json:"fields,omitempty"`
	Message string          `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: %s", v.Kind, strings.Join(v.Fields, ","), v.Message)
}

func violation(kind model.ErrorKind, msg string, fields ...string) Violation {
	return Violation{Kind: kind, Fields: fields, Message: msg}
}

func structural(msg string, fields ...string) Violation {
	return violation(model.ErrorKindStructural, msg, fields...)
}

// RiskRule inspects an order and reports every problem it finds. Rules never
// modify the input.
type RiskRule interface {
	Check(in *Input) []Violation
}

type RuleFunc func(in *Input) []Violation

func (f RuleFunc) Check(in *Input) []Violation {
	return f(in)
}

// ValidationError carries all violations of the stage that failed.
type ValidationError struct {
	Stage      string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s validation failed: %s", e.Stage, strings.Join(parts, "; "))
}

// Kind returns the kind of the first violation.
func (e *ValidationError) Kind() model.ErrorKind {
	if len(e.Violations) == 0 {
		return model.ErrorKindStructural
	}
	return e.Violations[0].Kind
}

func (e *ValidationError) HasKind(kind model.ErrorKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

type Stage struct {
	Name  string
	Rules []RiskRule
}

// Run applies every rule of the stage and returns a *ValidationError holding
// all collected violations, or nil.
func (s Stage) Run(in *Input) error {
	var violations []Violation
	for _, rule := range s.Rules {
		violations = append(violations, rule.Check(in)...)
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Stage: s.Name, Violations: violations}
}

// Pipeline runs stages in order and stops at the first one that fails.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Stages() []Stage {
	return p.stages
}

func (p *Pipeline) Run(in *Input) error {
	for _, stage := range p.stages {
		if err := stage.Run(in); err != nil {
			return err
		}
	}
	return nil
}
