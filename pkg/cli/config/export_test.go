package config

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn string, ratePerMin float64) *Sentry {
	return &Sentry{dsn: dsn, ratePerMin: ratePerMin}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(webhookURL string, ratePerMin float64) *Slack {
	return &Slack{webhookURL: webhookURL, ratePerMin: ratePerMin}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// Redactor is exported for testing
var Redactor = redactor
