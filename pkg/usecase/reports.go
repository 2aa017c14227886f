package usecase

import (
	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
)

const (
	ReportsLoadedMessage = "Reports loaded"
	ReportsFailedMessage = "Failed to load reports"
)

// ReportsViewer shows the detection reports of GET /view_reports
type ReportsViewer struct {
	*viewer[model.ReportsResponse]
}

func NewReportsViewer(api interfaces.BackendAPI, toasts *Toasts, sink diag.Sink) *ReportsViewer {
	if sink == nil {
		sink = diag.Nop{}
	}
	if toasts == nil {
		toasts = NewToasts()
	}
	return &ReportsViewer{
		viewer: &viewer[model.ReportsResponse]{
			name:       "reports",
			fetch:      api.ViewReports,
			successMsg: ReportsLoadedMessage,
			failureMsg: ReportsFailedMessage,
			toasts:     toasts,
			sink:       sink,
		},
	}
}
