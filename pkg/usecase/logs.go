package usecase

import (
	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
)

const (
	LogsLoadedMessage = "Logs loaded successfully"
	LogsFailedMessage = "Failed to fetch logs"
)

// LogsViewer shows the backend logs of GET /logs
type LogsViewer struct {
	*viewer[model.LogsResponse]
}

func NewLogsViewer(api interfaces.BackendAPI, toasts *Toasts, sink diag.Sink) *LogsViewer {
	if sink == nil {
		sink = diag.Nop{}
	}
	if toasts == nil {
		toasts = NewToasts()
	}
	return &LogsViewer{
		viewer: &viewer[model.LogsResponse]{
			name:       "logs",
			fetch:      api.Logs,
			successMsg: LogsLoadedMessage,
			failureMsg: LogsFailedMessage,
			toasts:     toasts,
			sink:       sink,
		},
	}
}
