package poller

import (
	"errors"
)

var (
	ErrFetchFailed     = errors.New("device fetch failed")
	ErrReconcileFailed = errors.New("summary reconciliation failed")
	errNoFetcher       = errors.New("poller requires a fetcher")
	errNoRegistry      = errors.New("poller requires a registry")
)
