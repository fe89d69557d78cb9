package policy

import (
	"fmt"
	"math"
	"strings"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

type kind int

const (
	kindGrade kind = iota
	kindBool
	kindCeiling
	kindIssueText
	kindUnsupported
)

// rule binds a config key to a value in the decoded result.
type rule struct {
	key   string
	kind  kind
	title string
	value func(doc any) (any, error)
	// failure overrides the default failure message.
	failure func(expected, actual any) string
}

type registry struct {
	decode func(raw []byte) (any, error)
	rules  []rule
}

// bind adapts a typed accessor to the untyped rule signature.
func bind[T any](fn func(*T) (any, error)) func(any) (any, error) {
	return func(doc any) (any, error) {
		t, ok := doc.(*T)
		if !ok {
			return nil, fmt.Errorf("%w: %T", sharedErrors.ErrUnexpectedShape, doc)
		}
		return fn(t)
	}
}

func decoder[T any](fn func([]byte) (*T, error)) func([]byte) (any, error) {
	return func(raw []byte) (any, error) {
		return fn(raw)
	}
}

func (r rule) evaluate(expected any, doc any) (Entry, error) {
	entry := Entry{Key: r.key}

	if r.kind == kindUnsupported {
		entry.Msg = fmt.Sprintf("%s: check is not supported", r.title)
		return entry, nil
	}

	actual, err := r.value(doc)
	if err != nil {
		return entry, err
	}

	switch r.kind {
	case kindGrade:
		minGrade, ok := expected.(string)
		if !ok {
			return entry, invalid(expected, "grade")
		}
		grade, _ := actual.(string)
		entry.Passed, err = GradePasses(grade, minGrade)
		if err != nil {
			return entry, err
		}
		if !entry.Passed {
			entry.Msg = fmt.Sprintf("Grade: '%s' is less than '%s'", grade, minGrade)
		}
	case kindBool:
		want, ok := expected.(bool)
		if !ok {
			return entry, invalid(expected, "boolean")
		}
		got, _ := actual.(bool)
		entry.Passed = want == got
		if !entry.Passed {
			entry.Msg = fmt.Sprintf("%s: expected '%t' instead of '%t'", r.title, want, got)
		}
	case kindCeiling, kindIssueText:
		limit, err := toInt(expected)
		if err != nil {
			return entry, err
		}
		var n int
		if r.kind == kindIssueText {
			text, _ := actual.(string)
			n = ParseIssueCount(text)
		} else {
			n, _ = actual.(int)
		}
		entry.Passed = n <= limit
		if !entry.Passed {
			if r.kind == kindIssueText {
				entry.Msg = fmt.Sprintf("%s: %d %s found, expected no more than %d", r.title, n, plural(n, "issue"), limit)
			} else {
				entry.Msg = fmt.Sprintf("%s: %d found, expected no more than %d", r.title, n, limit)
			}
		}
	default:
		return entry, fmt.Errorf("%w: unknown rule kind %d", sharedErrors.ErrRuleNotSupported, r.kind)
	}

	if !entry.Passed && r.failure != nil {
		entry.Msg = r.failure(expected, actual)
	}
	return entry, nil
}

func invalid(v any, want string) error {
	return fmt.Errorf("%w: expected %s, got %v (%T)", sharedErrors.ErrInvalidRuleValue, want, v, v)
}

// toInt accepts the integer shapes produced by YAML and JSON decoders.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, invalid(v, "integer")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func required[T any](v *T, path string) (T, error) {
	if v == nil {
		var zero T
		return zero, fmt.Errorf("%w: missing field %s", sharedErrors.ErrUnexpectedShape, path)
	}
	return *v, nil
}

func scoreText(s *results.Score, path string) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: missing field %s", sharedErrors.ErrUnexpectedShape, path)
	}
	return s.Description, nil
}

var registries = map[results.Service]registry{
	results.Websec: {
		decode: decoder(results.DecodeWebsec),
		rules: []rule{
			{key: "minimal_grade", kind: kindGrade, value: bind(func(r *results.WebsecResult) (any, error) {
				return r.Grade, nil
			})},
			{key: "compliance_pci_dss", kind: kindBool, title: "Compliance PCI DSS", value: bind(func(r *results.WebsecResult) (any, error) {
				return required(r.CompliancePCIDSS, "compliance_pci_dss")
			})},
			{key: "compliance_gdpr", kind: kindBool, title: "Compliance GDPR", value: bind(func(r *results.WebsecResult) (any, error) {
				return required(r.ComplianceGDPR, "compliance_gdpr")
			})},
			{key: "max_soft_outdated", kind: kindCeiling, title: "Web Software Outdated", value: bind(func(r *results.WebsecResult) (any, error) {
				return required(r.Stats().Outdated, "http_additional_info.app_scan.result.stats.outdated")
			})},
			{key: "max_soft_vulnerabilities", kind: kindCeiling, title: "Web Software Vulnerabilities", value: bind(func(r *results.WebsecResult) (any, error) {
				return required(r.Stats().Vulnerabilities, "http_additional_info.app_scan.result.stats.vulnerabilities")
			})},
			{key: "max_headers_issue", kind: kindIssueText, title: "Headers Security Test", value: bind(func(r *results.WebsecResult) (any, error) {
				return scoreText(r.Internals.Scores.HTTPHeaders, "internals.scores.http_headers.description")
			})},
			{
				key:  "csp_is_set",
				kind: kindBool,
				value: bind(func(r *results.WebsecResult) (any, error) {
					text, err := scoreText(r.Internals.Scores.CSP, "internals.scores.csp.description")
					if err != nil {
						return nil, err
					}
					return strings.ToLower(text.(string)) != "missing", nil
				}),
				failure: func(expected, _ any) string {
					if want, _ := expected.(bool); want {
						return "CSP is not set"
					}
					return "CSP is set"
				},
			},
		},
	},
	results.SSL: {
		decode: decoder(results.DecodeSSL),
		rules: []rule{
			{key: "minimal_grade", kind: kindGrade, value: bind(func(r *results.SSLResult) (any, error) {
				return r.Grade(), nil
			})},
			{key: "max_pci_dss_issues", kind: kindIssueText, title: "PCI DSS", value: bind(func(r *results.SSLResult) (any, error) {
				return scoreText(r.Internals.Scores.PCIDSS, "internals.scores.pci_dss.description")
			})},
			{key: "max_hipaa", kind: kindIssueText, title: "HIPAA", value: bind(func(r *results.SSLResult) (any, error) {
				return scoreText(r.Internals.Scores.HIPAA, "internals.scores.hipaa.description")
			})},
			{key: "max_nist", kind: kindIssueText, title: "NIST", value: bind(func(r *results.SSLResult) (any, error) {
				return scoreText(r.Internals.Scores.NIST, "internals.scores.nist.description")
			})},
			{key: "max_best_practises_issues", kind: kindIssueText, title: "Industry Best Practices", value: bind(func(r *results.SSLResult) (any, error) {
				return scoreText(r.Internals.Scores.IndustryBestPractices, "internals.scores.industry_best_practices.description")
			})},
		},
	},
	results.Mobile: {
		decode: decoder(results.DecodeMobile),
		rules: []rule{
			{key: "max_privacy_normal", kind: kindUnsupported, title: "Privacy (normal permissions)"},
			{key: "max_privacy_dangerous", kind: kindUnsupported, title: "Privacy (dangerous permissions)"},
			mobileRisk("max_critical", "Critical risks", func(t results.RiskTally) int { return t.Critical }),
			mobileRisk("max_high", "High risks", func(t results.RiskTally) int { return t.High }),
			mobileRisk("max_medium", "Medium risks", func(t results.RiskTally) int { return t.Medium }),
			mobileRisk("max_low", "Low risks", func(t results.RiskTally) int { return t.Low }),
			mobileRisk("max_warning", "Warnings", func(t results.RiskTally) int { return t.Warning }),
			mobileRisk("max_risk_total", "Total risks", results.RiskTally.Total),
		},
	},
}

func mobileRisk(key, title string, pick func(results.RiskTally) int) rule {
	return rule{
		key:   key,
		kind:  kindCeiling,
		title: title,
		value: bind(func(r *results.MobileResult) (any, error) {
			tally, err := r.Risks()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", sharedErrors.ErrUnexpectedShape, err)
			}
			return pick(tally), nil
		}),
	}
}
