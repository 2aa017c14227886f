package model_test

import (
	"errors"
	"testing"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestNewFault(t *testing.T) {
	t.Run("from error keeps the chain", func(t *testing.T) {
		base := errors.New("x")
		f := model.NewFault(model.FaultKindRender, base)
		gt.Value(t, f.Message).Equal("x")
		gt.Bool(t, errors.Is(f, base)).True()
		gt.String(t, string(f.ID)).NotEqual("")
	})

	t.Run("from string", func(t *testing.T) {
		f := model.NewFault(model.FaultKindUncaught, "boom")
		gt.Value(t, f.Message).Equal("boom")
		gt.Value(t, f.Kind).Equal(model.FaultKindUncaught)
	})

	t.Run("from arbitrary value", func(t *testing.T) {
		f := model.NewFault(model.FaultKindUncaught, 42)
		gt.Value(t, f.Message).Equal("42")
	})

	t.Run("from nil", func(t *testing.T) {
		f := model.NewFault(model.FaultKindUnhandledRejection, nil)
		gt.Value(t, f).NotNil()
		gt.Value(t, f.Message).Equal("unknown fault")
	})

	t.Run("goerr stack is captured", func(t *testing.T) {
		f := model.NewFault(model.FaultKindRender, goerr.New("with stack"))
		gt.Bool(t, len(f.Stack) > 0).True()
	})
}

func TestFaultContextComponentStack(t *testing.T) {
	c := &model.FaultContext{Path: []string{"App", "ReportsPage", "ReportsTable"}}
	gt.Value(t, c.ComponentStack()).Equal("\n    in ReportsTable\n    in ReportsPage\n    in App")

	var nilCtx *model.FaultContext
	gt.Value(t, nilCtx.ComponentStack()).Equal("")
	gt.Value(t, len(nilCtx.Payload())).Equal(0)
}

func TestFaultStateValid(t *testing.T) {
	gt.Bool(t, model.FaultState{}.Valid()).True()
	gt.Bool(t, model.FaultState{HasFault: true}.Valid()).False()
	gt.Bool(t, model.FaultState{HasFault: true, Fault: model.NewFault(model.FaultKindRender, "x")}.Valid()).True()
}

func TestSeverity(t *testing.T) {
	gt.NoError(t, model.SeverityWarning.Validate())
	err := model.Severity("loud").Validate()
	gt.Bool(t, errors.Is(err, model.ErrInvalidSeverity)).True()
}
