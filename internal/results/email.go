package results

// EmailResult is the completed Email Security Test payload.
type EmailResult struct {
	Internals struct {
		Hostname string    `json:"hostname"`
		ShortID  Scalar    `json:"short_id"`
		TS       Timestamp `json:"ts"`
	} `json:"internals"`
	Summary EmailSummary `json:"summary"`
}

type EmailSummary struct {
	Server     SummaryTile `json:"server"`
	SSL        SummaryTile `json:"ssl"`
	DNS        SummaryTile `json:"dns"`
	Blacklists SummaryTile `json:"blacklists"`
	Darkweb    SummaryTile `json:"darkweb"`
	Phishing   SummaryTile `json:"phishing"`
}

// SummaryTile is a colored summary line of the email report.
type SummaryTile struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

// DecodeEmail decodes an Email Security Test result.
func DecodeEmail(raw []byte) (*EmailResult, error) {
	return decode[EmailResult](Email, raw)
}

func (e *EmailResult) validate() error {
	if e.Internals.Hostname == "" {
		return missing("internals.hostname")
	}
	return nil
}
