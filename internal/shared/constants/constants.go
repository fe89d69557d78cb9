package constants

import (
	"io/fs"
	"time"
)

// DefaultFilePerm is the permission of output and report files.
const DefaultFilePerm fs.FileMode = 0o644

const (
	// DefaultAPIBaseURL is the vendor host every service endpoint hangs off.
	DefaultAPIBaseURL = "https://www.immuniweb.com"
	// UserAgent is sent with every vendor request.
	UserAgent = "iwtools-0.2"
	// DefaultPollInterval paces result polling while a test is running.
	DefaultPollInterval = 10 * time.Second
	// DefaultHTTPTimeout bounds a single vendor request. Polling itself has no deadline.
	DefaultHTTPTimeout = 60 * time.Second
	// IndicatorTick is how often the progress indicator redraws.
	IndicatorTick = 100 * time.Millisecond
	// OutdatedResultAge marks cached results older than a week in reports.
	OutdatedResultAge = 7 * 24 * time.Hour
)

// Exit codes a calling pipeline can branch on.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitCommandError = 2
	ExitCheckFailed  = 3
)

// AnyIP is the IP override value meaning "let the vendor resolve the target".
const AnyIP = "any"
