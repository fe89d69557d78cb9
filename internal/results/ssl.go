package results

// SSLResult is the completed SSL Security Test payload.
type SSLResult struct {
	Results struct {
		Grade string `json:"grade"`
	} `json:"results"`
	Internals  SSLInternals   `json:"internals"`
	ServerInfo SSLServerInfo  `json:"server_info"`
	Highlights []SSLHighlight `json:"highlights"`
}

type SSLInternals struct {
	TS      Timestamp `json:"ts"`
	ShortID Scalar    `json:"short_id"`
	Scores  SSLScores `json:"scores"`
}

type SSLScores struct {
	HIPAA                 *Score `json:"hipaa"`
	NIST                  *Score `json:"nist"`
	PCIDSS                *Score `json:"pci_dss"`
	IndustryBestPractices *Score `json:"industry_best_practices"`
}

// SSLServerInfo wraps each server attribute in a {"value": ...} object.
type SSLServerInfo struct {
	UnicodeHostname ValueField `json:"unicode_hostname"`
	Port            ValueField `json:"port"`
	IP              ValueField `json:"ip"`
}

type ValueField struct {
	Value Scalar `json:"value"`
}

// SSLHighlight is one note of the SSL report. Tag indexes the note title.
type SSLHighlight struct {
	Tag         int    `json:"tag"`
	Highlight   string `json:"highlight"`
	HighlightID int    `json:"highlight_id"`
}

// DecodeSSL decodes an SSL Security Test result.
func DecodeSSL(raw []byte) (*SSLResult, error) {
	return decode[SSLResult](SSL, raw)
}

func (s *SSLResult) validate() error {
	if s.Results.Grade == "" {
		return missing("results.grade")
	}
	return nil
}

// Grade is the overall letter grade.
func (s *SSLResult) Grade() string {
	return s.Results.Grade
}
