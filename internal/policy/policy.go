// Package policy evaluates completed test results against a pipeline policy.
package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// Config maps rule keys to expected values (grade string, bool or int).
type Config map[string]any

// Entry is the outcome of one rule. Passing entries carry no message.
type Entry struct {
	Key    string `json:"key"`
	Passed bool   `json:"passed"`
	Msg    string `json:"msg,omitempty"`
}

// Log is the ordered result of one evaluation.
type Log []Entry

// Passed is true when no entry failed. An empty log passes.
func (l Log) Passed() bool {
	for _, e := range l {
		if !e.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failing entries.
func (l Log) Failed() Log {
	var out Log
	for _, e := range l {
		if !e.Passed {
			out = append(out, e)
		}
	}
	return out
}

var grades = []string{"N", "F", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}

func gradeIndex(g string) (int, error) {
	for i, v := range grades {
		if v == g {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", sharedErrors.ErrUnknownGrade, g)
}

// GradePasses reports whether actual is at least minimum in the order
// N < F < C < C+ < B- < B < B+ < A- < A < A+.
func GradePasses(actual, minimum string) (bool, error) {
	minIdx, err := gradeIndex(minimum)
	if err != nil {
		return false, err
	}
	actualIdx, err := gradeIndex(actual)
	if err != nil {
		return false, err
	}
	return actualIdx >= minIdx, nil
}

var issueCount = regexp.MustCompile(`^\s*(\d+)\s`)

// ParseIssueCount extracts N from descriptions like "3 issues found".
// Text that does not mention found issues, or has no leading number, is 0.
func ParseIssueCount(text string) int {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "issue found") && !strings.Contains(lower, "issues found") {
		return 0
	}
	m := issueCount.FindStringSubmatch(lower)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Check evaluates cfg against the raw result of service. Only configured
// keys produce entries, in registry order. Services without a registry
// yield an empty log.
func Check(service results.Service, cfg Config, raw []byte) (Log, error) {
	reg, ok := registries[service]
	if !ok {
		return Log{}, nil
	}

	var configured []rule
	for _, r := range reg.rules {
		if _, ok := cfg[r.key]; ok {
			configured = append(configured, r)
		}
	}
	if len(configured) == 0 {
		return Log{}, nil
	}

	doc, err := reg.decode(raw)
	if err != nil {
		return nil, err
	}

	log := make(Log, 0, len(configured))
	for _, r := range configured {
		entry, err := r.evaluate(cfg[r.key], doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.key, err)
		}
		log = append(log, entry)
	}
	return log, nil
}

// Supported reports whether service has a rule registry.
func Supported(service results.Service) bool {
	_, ok := registries[service]
	return ok
}

// Keys lists the rule keys of service in evaluation order.
func Keys(service results.Service) []string {
	reg, ok := registries[service]
	if !ok {
		return nil
	}
	keys := make([]string, len(reg.rules))
	for i, r := range reg.rules {
		keys[i] = r.key
	}
	return keys
}
