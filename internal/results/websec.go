package results

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// WebsecResult is the completed Website Security Test payload.
type WebsecResult struct {
	Grade              string            `json:"grade"`
	CompliancePCIDSS   *bool             `json:"compliance_pci_dss"`
	ComplianceGDPR     *bool             `json:"compliance_gdpr"`
	HTTPAdditionalInfo WebsecAdditional  `json:"http_additional_info"`
	Internals          WebsecInternals   `json:"internals"`
	TS                 Timestamp         `json:"ts"`
	SourceURL          string            `json:"source_url"`
	TestedURL          string            `json:"tested_url"`
	ServerIP           string            `json:"server_ip"`
	UnicodeHostname    string            `json:"unicode_hostname"`
	ShortID            Scalar            `json:"short_id"`
	GlobalHighlights   []json.RawMessage `json:"global_highlights"`
	Highlights         []WebsecHighlight `json:"highlights"`
}

type WebsecAdditional struct {
	AppScan struct {
		Result struct {
			Stats AppScanStats `json:"stats"`
		} `json:"result"`
	} `json:"app_scan"`
}

// AppScanStats counts outdated and vulnerable web software components.
type AppScanStats struct {
	Outdated        *int `json:"outdated"`
	Vulnerabilities *int `json:"vulnerabilities"`
}

type WebsecInternals struct {
	Scores WebsecScores `json:"scores"`
}

type WebsecScores struct {
	PCIDSS      *Score `json:"pci_dss"`
	GDPR        *Score `json:"gdpr"`
	CSP         *Score `json:"csp"`
	AppScan     *Score `json:"app_scan"`
	HTTPHeaders *Score `json:"http_headers"`
}

// WebsecHighlight is a finding attached to one check group.
type WebsecHighlight struct {
	Location  string `json:"location"`
	Highlight string `json:"highlight"`
}

// DecodeWebsec decodes a Website Security Test result.
func DecodeWebsec(raw []byte) (*WebsecResult, error) {
	return decode[WebsecResult](Websec, raw)
}

func (w *WebsecResult) validate() error {
	if w.Grade == "" {
		return missing("grade")
	}
	return nil
}

// Stats returns the software scan counters.
func (w *WebsecResult) Stats() AppScanStats {
	return w.HTTPAdditionalInfo.AppScan.Result.Stats
}

// TextHighlights returns the plain-text global highlights. Entries carrying
// HTML fragments are objects and are skipped.
func (w *WebsecResult) TextHighlights() []string {
	var out []string
	for _, raw := range w.GlobalHighlights {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

var highlightStatus = regexp.MustCompile(`^(.+) \[(\d+)\]$`)

// ParseHighlightStatus splits "text [N]" into the text and its status code.
// Highlights without a code get status 4 (information).
func ParseHighlightStatus(highlight string) (string, int) {
	m := highlightStatus.FindStringSubmatch(highlight)
	if m == nil {
		return highlight, 4
	}
	code, err := strconv.Atoi(m[2])
	if err != nil {
		return highlight, 4
	}
	return m[1], code
}
