package cli

var (
	NewApp           = newApp
	PrintReports     = printReports
	PrintLogs        = printLogs
	PrintFaultRecord = printFaultRecord
	GetIndexConfig   = getIndexConfig
)
