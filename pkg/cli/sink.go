package cli

import (
	"github.com/leakwatch/leakwatch/pkg/cli/config"
	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/m-mizutani/goerr/v2"
)

// configureDispatcher builds the diagnostic dispatcher delivering to the fault journal and
// to Sentry and Slack when they are configured. The returned function flushes Sentry.
func configureDispatcher(repo interfaces.Repository, sentryCfg *config.Sentry, slackCfg *config.Slack) (*diag.Dispatcher, func(), error) {
	opts := []diag.DispatcherOption{
		diag.WithChannel(diag.NewJournalChannel(repo.FaultRecord())),
	}

	sentryCh, flush, err := sentryCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure sentry")
	}
	if sentryCh != nil {
		opts = append(opts, diag.WithChannel(sentryCh))
	}

	slackCh, err := slackCfg.Configure()
	if err != nil {
		flush()
		return nil, nil, goerr.Wrap(err, "failed to configure slack")
	}
	if slackCh != nil {
		opts = append(opts, diag.WithChannel(slackCh))
	}

	return diag.NewDispatcher(opts...), flush, nil
}
