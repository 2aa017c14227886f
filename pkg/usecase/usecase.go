package usecase

import (
	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
)

// UseCases builds the per-instance viewers around one backend API
type UseCases struct {
	api  interfaces.BackendAPI
	sink diag.Sink
}

type Option func(*UseCases)

// WithSink sets where fetch failures are reported
func WithSink(sink diag.Sink) Option {
	return func(uc *UseCases) {
		uc.sink = sink
	}
}

func New(api interfaces.BackendAPI, opts ...Option) *UseCases {
	uc := &UseCases{
		api:  api,
		sink: diag.Nop{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// NewReportsViewer creates a reports viewer publishing toasts to toasts
func (uc *UseCases) NewReportsViewer(toasts *Toasts) *ReportsViewer {
	return NewReportsViewer(uc.api, toasts, uc.sink)
}

// NewLogsViewer creates a logs viewer publishing toasts to toasts
func (uc *UseCases) NewLogsViewer(toasts *Toasts) *LogsViewer {
	return NewLogsViewer(uc.api, toasts, uc.sink)
}
