package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNoArticle     = errors.New("no article extracted")
	ErrBodyTooShort  = errors.New("article body below minimum length")
	ErrNoContainer   = errors.New("no article container found")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrBrowserClosed = errors.New("browser session closed")
)

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ExtractError wraps errors from the article extraction strategies.
type ExtractError struct {
	URL      string
	Strategy string // "readability" or "fallback"
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (strategy=%s): %v", e.URL, e.Strategy, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// CollectError wraps errors from a link collector. Collectors treat these
// as end-of-pagination for the affected source, never as fatal.
type CollectError struct {
	Source Source
	Page   int
	Err    error
}

func (e *CollectError) Error() string {
	return fmt.Sprintf("collect error for %s (page %d): %v", e.Source, e.Page, e.Err)
}

func (e *CollectError) Unwrap() error { return e.Err }

// StorageError wraps errors from a storage backend.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
