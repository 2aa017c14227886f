package view

import (
	"github.com/leakwatch/leakwatch/pkg/domain/model"
)

// Routes of the actions rendered into pages
const (
	ReportsPath        = "/reports"
	LogsPath           = "/logs"
	ReportsRefreshPath = "/reports/refresh"
	LogsRefreshPath    = "/logs/refresh"
	DismissPath        = "/fault/dismiss"
	ReloadPath         = "/fault/reload"
)

// DocumentData fills the HTML document around the application
type DocumentData struct {
	Title string
	// AutoRefreshSeconds makes the browser re-request the page while data is loading; 0 disables it
	AutoRefreshSeconds int
}

// NavItem is one entry of the navigation bar
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// AppData fills the application chrome
type AppData struct {
	Title  string
	Nav    []NavItem
	Toasts []model.Toast
}

// ReportsData is the reports viewer state as rendered
type ReportsData struct {
	Loading     bool
	Data        *model.ReportsResponse
	RefreshPath string
}

// LogsData is the logs viewer state as rendered
type LogsData struct {
	Loading     bool
	Logs        []model.LogEntry
	RefreshPath string
}

type fallbackData struct {
	Boundary       string
	Message        string
	ComponentStack string
	ReloadPath     string
	DismissPath    string
}
