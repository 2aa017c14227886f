package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leakwatch/leakwatch/pkg/fault"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/usecase"
	"github.com/leakwatch/leakwatch/pkg/view"
)

// Boundary names of an instance
const (
	RootBoundary    = "root"
	ReportsBoundary = "reports"
	LogsBoundary    = "logs"
)

// Instance is one dashboard client: the render tree state of a single session.
// Renders of one instance are serialised.
type Instance struct {
	ID        string
	CreatedAt time.Time
	Reports   *usecase.ReportsViewer
	Logs      *usecase.LogsViewer
	Toasts    *usecase.Toasts

	title       string
	autoRefresh int
	runner      usecase.Runner

	renderMu   sync.Mutex
	boundaries map[string]*fault.Boundary
}

func newInstance(id string, uc *usecase.UseCases, sink diag.Sink, runner usecase.Runner, title string, autoRefresh int) *Instance {
	if id == "" {
		id = uuid.New().String()
	}
	toasts := usecase.NewToasts()
	return &Instance{
		ID:          id,
		CreatedAt:   time.Now().UTC(),
		Reports:     uc.NewReportsViewer(toasts),
		Logs:        uc.NewLogsViewer(toasts),
		Toasts:      toasts,
		title:       title,
		autoRefresh: autoRefresh,
		runner:      runner,
		boundaries: map[string]*fault.Boundary{
			RootBoundary:    fault.NewBoundary(RootBoundary, sink),
			ReportsBoundary: fault.NewBoundary(ReportsBoundary, sink),
			LogsBoundary:    fault.NewBoundary(LogsBoundary, sink),
		},
	}
}

// Boundary returns the named boundary, or nil
func (i *Instance) Boundary(name string) *fault.Boundary {
	return i.boundaries[name]
}

// Dismiss resets the named boundary, the root one if name is empty.
// It returns false when there is no such boundary or it was not faulted.
func (i *Instance) Dismiss(name string) bool {
	if name == "" {
		name = RootBoundary
	}
	b, ok := i.boundaries[name]
	if !ok {
		return false
	}
	return b.Dismiss()
}

// RenderReports mounts the reports viewer and renders its page
func (i *Instance) RenderReports(ctx context.Context, w io.Writer) error {
	i.Reports.Mount(ctx, i.runner)
	state := i.Reports.State()
	page := view.ReportsPage(view.ReportsData{Loading: state.Loading, Data: state.Data})
	return i.RenderPage(ctx, w, view.ReportsPath, ReportsBoundary, page, state.Loading)
}

// RenderLogs mounts the logs viewer and renders its page
func (i *Instance) RenderLogs(ctx context.Context, w io.Writer) error {
	i.Logs.Mount(ctx, i.runner)
	state := i.Logs.State()
	data := view.LogsData{Loading: state.Loading}
	if state.Data != nil {
		data.Logs = state.Data.Logs
	}
	return i.RenderPage(ctx, w, view.LogsPath, LogsBoundary, view.LogsPage(data), state.Loading)
}

// RenderPage renders the document with the application shell inside the root boundary and
// page inside the named page boundary. loading enables the browser auto-refresh.
func (i *Instance) RenderPage(ctx context.Context, w io.Writer, path, boundary string, page view.Component, loading bool) error {
	i.renderMu.Lock()
	defer i.renderMu.Unlock()

	ctx = fault.WithInstanceID(ctx, i.ID)

	doc := view.DocumentData{Title: i.title}
	if loading {
		doc.AutoRefreshSeconds = i.autoRefresh
	}

	pageBoundary := i.boundaries[boundary]
	body := view.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return i.boundaries[RootBoundary].Render(ctx, w, i.shell(path, pageBoundary, page))
	})

	return view.Document(doc, body).Render(ctx, w)
}

func (i *Instance) shell(path string, pageBoundary *fault.Boundary, page view.Component) view.Component {
	return view.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data := view.AppData{
			Title: i.title,
			Nav: []view.NavItem{
				{Label: "Reports", Path: view.ReportsPath, Active: path == view.ReportsPath},
				{Label: "Logs", Path: view.LogsPath, Active: path == view.LogsPath},
			},
			Toasts: i.Toasts.Drain(),
		}

		inner := page
		if pageBoundary != nil {
			inner = view.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				return pageBoundary.Render(ctx, w, page)
			})
		}
		return view.App(data, inner).Render(ctx, w)
	})
}
