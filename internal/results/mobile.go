package results

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MobileResult is the completed Mobile App Security Test payload.
type MobileResult struct {
	Status string       `json:"status"`
	Scores MobileScores `json:"scores"`
	Data   struct {
		AppInfo  MobileAppInfo `json:"app_info"`
		TestSAST *MobileTest   `json:"test_sast"`
		TestDAST *MobileTest   `json:"test_dast"`
	} `json:"data"`
}

type MobileScores struct {
	OWASPTop10 Score `json:"owasp_top_10"`
	Behaviour  Score `json:"behaviour"`
	SCA        Score `json:"sca"`
	APIs       Score `json:"apis"`
}

type MobileAppInfo struct {
	TSStop       Timestamp `json:"ts_stop"`
	AppName      string    `json:"app_name"`
	AppID        string    `json:"app_id"`
	AppVersion   Scalar    `json:"app_version"`
	AppDeveloper string    `json:"app_developer"`
	DeviceType   string    `json:"device_type"`
	TestShortID  Scalar    `json:"test_short_id"`
}

type MobileTest struct {
	Vulns Vulns `json:"vulns"`
}

// Vuln is a single SAST or DAST finding.
type Vuln struct {
	Information struct {
		Level string `json:"level"`
	} `json:"information"`
}

// Vulns maps finding ids to findings. The vendor sends an empty array instead
// of an empty object when nothing was found.
type Vulns map[string]Vuln

func (v *Vulns) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Vuln
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		out := make(Vulns, len(list))
		for i, item := range list {
			out[itoa(i)] = item
		}
		*v = out
		return nil
	}
	var m map[string]Vuln
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*v = m
	return nil
}

// Levels returns the severity level of every finding in key order.
func (v Vulns) Levels() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, v[k].Information.Level)
	}
	return out
}

// DecodeMobile decodes a Mobile App Security Test result.
func DecodeMobile(raw []byte) (*MobileResult, error) {
	return decode[MobileResult](Mobile, raw)
}

func (m *MobileResult) validate() error {
	if m.Data.AppInfo.AppID == "" {
		return missing("data.app_info.app_id")
	}
	return nil
}

// RiskTally counts findings of both sub-reports by severity level.
type RiskTally struct {
	Critical int
	High     int
	Medium   int
	Low      int
	Warning  int
	Other    int
}

// Total is the number of findings with a known severity.
func (r RiskTally) Total() int {
	return r.Critical + r.High + r.Medium + r.Low + r.Warning
}

// Risks tallies SAST and DAST findings. Both sub-reports must be present.
func (m *MobileResult) Risks() (RiskTally, error) {
	var tally RiskTally
	if m.Data.TestSAST == nil {
		return tally, missing("data.test_sast.vulns")
	}
	if m.Data.TestDAST == nil {
		return tally, missing("data.test_dast.vulns")
	}
	for _, vulns := range []Vulns{m.Data.TestSAST.Vulns, m.Data.TestDAST.Vulns} {
		for _, level := range vulns.Levels() {
			switch level {
			case "critical":
				tally.Critical++
			case "high":
				tally.High++
			case "medium":
				tally.Medium++
			case "low":
				tally.Low++
			case "warning":
				tally.Warning++
			default:
				tally.Other++
			}
		}
	}
	return tally, nil
}
