package results

// DarkwebResult is the completed Dark Web Exposure Test payload.
type DarkwebResult struct {
	AssessmentDate Timestamp        `json:"assesment_date"`
	OrigURL        string           `json:"orig_url"`
	UnicodeOrigURL string           `json:"unicode_orig_url"`
	Internals      DarkwebInternals `json:"internals"`
}

type DarkwebInternals struct {
	ID     Scalar        `json:"id"`
	Scores DarkwebScores `json:"scores"`
}

type DarkwebScores struct {
	DarkWeb        Score `json:"dark_web"`
	Phishing       Score `json:"phishing"`
	SocialNetworks Score `json:"social_networks"`
	Typosquatting  Score `json:"typosquatting"`
	Cybersquatting Score `json:"cybersquatting"`
}

// DecodeDarkweb decodes a Dark Web Exposure Test result.
func DecodeDarkweb(raw []byte) (*DarkwebResult, error) {
	return decode[DarkwebResult](Darkweb, raw)
}

func (d *DarkwebResult) validate() error {
	if d.OrigURL == "" && d.UnicodeOrigURL == "" {
		return missing("orig_url")
	}
	return nil
}
