package utils

import (
	"errors"
)

var (
	// URL相关错误
	ErrUnsupportedURL       = errors.New("unsupported URL")
	ErrIdentifierExtraction = errors.New("could not extract post identifier from URL")

	// 数据源相关错误
	ErrCredentialInvalid     = errors.New("scraping credential invalid")
	ErrProviderRequestFailed = errors.New("provider request failed")
	ErrNoResults             = errors.New("no results returned from scrape job")
	ErrJobFailed             = errors.New("scrape job failed")
	ErrJobAborted            = errors.New("scrape job aborted")
	ErrJobTimedOut           = errors.New("scrape job timed out")

	// 策略相关
	ErrRestrictedContentSkipped = errors.New("restricted post skipped per your setting")

	// 存储相关错误
	ErrPersistenceFailed = errors.New("failed to persist post")
	ErrCacheMiss         = errors.New("cache miss")
)

// IsInformational 判断错误是否只是提示性结果(非真正失败)
func IsInformational(err error) bool {
	return errors.Is(err, ErrRestrictedContentSkipped)
}

// IsProviderFailure 判断是否属于上游数据源返回的失败
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrProviderRequestFailed) ||
		errors.Is(err, ErrNoResults) ||
		errors.Is(err, ErrJobFailed) ||
		errors.Is(err, ErrJobAborted)
}
