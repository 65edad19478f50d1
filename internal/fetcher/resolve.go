package fetcher

import (
	"context"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/resilience"
)

// ResolveOptions configures how remote ledger locations are fetched.
type ResolveOptions struct {
	FTP     FTPOptions
	Retry   resilience.RetryConfig
	TempDir string // empty uses os.TempDir
}

// ResolveOptionsFromConfig maps the fetch section onto ResolveOptions.
func ResolveOptionsFromConfig(cfg config.FetchConfig) ResolveOptions {
	opts := ResolveOptions{
		Retry:   resilience.FromFetchConfig(cfg),
		TempDir: cfg.TempDir,
	}
	if cfg.TimeoutSecs > 0 {
		opts.FTP.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	return opts
}

// Resolve turns a ledger location into a readable local path. Local paths
// are returned as given. ftp:// locations are downloaded to a temp file,
// retrying transient failures; cleanup removes it. cleanup is never nil.
func Resolve(ctx context.Context, location string, opts ResolveOptions) (string, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(strings.ToLower(location), "ftp://") {
		if _, err := os.Stat(location); err != nil {
			return "", noop, eris.Wrapf(err, "fetcher: stat %s", location)
		}
		return location, noop, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", noop, eris.Wrap(err, "fetcher: parse location")
	}

	tmp, err := os.CreateTemp(opts.TempDir, "ledger-*"+path.Ext(u.Path))
	if err != nil {
		return "", noop, eris.Wrap(err, "fetcher: create temp file")
	}
	tmpPath := tmp.Name()
	tmp.Close() //nolint:errcheck

	cleanup := func() { _ = os.Remove(tmpPath) }

	retry := opts.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(u.Redacted())
	}

	ftpFetcher := NewFTPFetcher(opts.FTP)
	n, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (int64, error) {
		return ftpFetcher.DownloadToFile(ctx, location, tmpPath)
	})
	if err != nil {
		cleanup()
		return "", noop, eris.Wrapf(err, "fetcher: download %s", u.Redacted())
	}

	zap.L().Info("fetcher: downloaded ledger",
		zap.String("location", u.Redacted()),
		zap.Int64("bytes", n),
	)
	return tmpPath, cleanup, nil
}
