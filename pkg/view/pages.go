package view

import (
	"context"
	"html"
	"io"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
)

// Document renders the HTML document skeleton around body
func Document(data DocumentData, body Component) Component {
	return ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := execute(w, "document_head", data); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return execute(w, "document_foot", nil)
	})
}

// App renders the navigation and toasts around page
func App(data AppData, page Component) Component {
	return Named("App", ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := execute(w, "app_head", data); err != nil {
			return err
		}
		if err := page.Render(ctx, w); err != nil {
			return err
		}
		return execute(w, "app_foot", nil)
	}))
}

// ReportsPage renders the reports viewer
func ReportsPage(data ReportsData) Component {
	if data.RefreshPath == "" {
		data.RefreshPath = ReportsRefreshPath
	}
	return Named("ReportsPage", ComponentFunc(func(_ context.Context, w io.Writer) error {
		return execute(w, "reports", data)
	}))
}

// LogsPage renders the logs viewer
func LogsPage(data LogsData) Component {
	if data.RefreshPath == "" {
		data.RefreshPath = LogsRefreshPath
	}
	return Named("LogsPage", ComponentFunc(func(_ context.Context, w io.Writer) error {
		return execute(w, "logs", data)
	}))
}

// Fallback renders the screen shown by a faulted boundary. It falls back to plain escaped
// text if the template itself fails, so it always produces output.
func Fallback(boundary string, state model.FaultState) Component {
	return ComponentFunc(func(_ context.Context, w io.Writer) error {
		data := fallbackData{
			Boundary:    boundary,
			ReloadPath:  ReloadPath,
			DismissPath: DismissPath,
		}
		if state.Fault != nil {
			data.Message = state.Fault.Message
		}
		if state.Context != nil {
			data.ComponentStack = state.Context.ComponentStack()
		}

		if err := execute(w, "fallback", data); err != nil {
			_, werr := io.WriteString(w, "<p>An unexpected error occurred: "+html.EscapeString(data.Message)+"</p>")
			return werr
		}
		return nil
	})
}
