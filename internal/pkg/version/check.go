package version

import (
	"context"
	"time"

	"github.com/Masterminds/semver"
	"github.com/go-resty/resty/v2"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	githubHost   = "https://api.github.com"
	releasesPath = "repos/homewire/x10/releases?per_page=5"
	checkTimeout = 3 * time.Second
)

type checker struct {
	client *resty.Client
	ctx    context.Context
	cancel context.CancelFunc
	logger log.Logger
}

func NewGitHubChecker(parentCtx context.Context, logger log.Logger) *checker {
	ctx, cancel := context.WithTimeout(parentCtx, checkTimeout)
	client := resty.New().
		SetBaseURL(githubHost).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetRetryCount(2)
	return &checker{client: client, ctx: ctx, cancel: cancel, logger: logger}
}

func (c *checker) CheckIfLatest(currentVersion string) error {
	defer c.cancel()

	if currentVersion == DevVersionValue {
		return errors.New("skipped, found dev build")
	}

	latest, err := c.getLatestVersion()
	if err != nil {
		return err
	}

	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		return errors.Errorf(`cannot parse the current version "%s": %w`, currentVersion, err)
	}

	if current.LessThan(latest) {
		c.logger.Warnf(`*******************************************************`)
		c.logger.Warnf(`WARNING: A new version "v%s" is available.`, latest.String())
		c.logger.Warnf(`Please update to get the latest features and bug fixes.`)
		c.logger.Warnf(`*******************************************************`)
	}

	return nil
}

func (c *checker) getLatestVersion() (*semver.Version, error) {
	// The last release may be without assets (build in progress),
	// so the last few releases are loaded.
	result := make([]map[string]any, 0)
	res, err := c.client.R().SetContext(c.ctx).SetResult(&result).Get(releasesPath)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, errors.Errorf(`cannot load releases: status %d`, res.StatusCode())
	}

	for _, release := range result {
		assets, ok := release["assets"].([]any)
		if !ok || len(assets) == 0 {
			continue
		}

		name, ok := release["tag_name"].(string)
		if !ok || name == "" {
			continue
		}

		version, err := semver.NewVersion(name)
		if err != nil {
			continue
		}
		return version, nil
	}

	return nil, errors.New("failed to parse the latest version")
}
