package interfaces

import (
	"context"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
)

// BackendAPI is the read-only API consumed by the dashboard viewers
type BackendAPI interface {
	ViewReports(ctx context.Context) (*model.ReportsResponse, error)
	Logs(ctx context.Context) (*model.LogsResponse, error)
}
