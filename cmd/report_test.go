package cmd

import (
	"strings"
	"testing"

	"github.com/khanhnv2901/iwtools/internal/driver"
	"github.com/khanhnv2901/iwtools/internal/results"
)

const testBaseURL = "https://iw.test"

func renderText(t *testing.T, service results.Service, raw string) string {
	t.Helper()
	lines, err := renderReport(service, []byte(raw), reportContext{baseURL: testBaseURL, now: fixedNow})
	if err != nil {
		t.Fatalf("renderReport(%s): %v", service, err)
	}
	return strings.Join(lines, "\n")
}

func assertContainsInOrder(t *testing.T, text string, want ...string) {
	t.Helper()
	pos := 0
	for _, w := range want {
		i := strings.Index(text[pos:], w)
		if i < 0 {
			t.Fatalf("expected %q after offset %d in:\n%s", w, pos, text)
		}
		pos += i + len(w)
	}
}

func TestRenderHeader(t *testing.T) {
	tests := []struct {
		name    string
		service results.Service
		req     driver.Request
		want    []string
	}{
		{
			name:    "websec without ip",
			service: results.Websec,
			req:     driver.Request{Target: "https://example.com", IP: "any"},
			want: []string{
				"\nImmuniWeb® Community Edition: Website Security Test\n",
				"Target: https://example.com",
				"IP Address: Not specified\n",
			},
		},
		{
			name:    "ssl with ip",
			service: results.SSL,
			req:     driver.Request{Target: "example.com:443", IP: "10.1.1.1"},
			want: []string{
				"\nImmuniWeb® Community Edition: SSL Security Test\n",
				"Target: example.com:443",
				"IP Address: 10.1.1.1\n",
			},
		},
		{
			name:    "cloud parameters",
			service: results.Cloud,
			req:     driver.Request{Target: "example.com", Quick: true},
			want: []string{
				"\nImmuniWeb® Community Edition: Cloud Security Test\n",
				"Input parameters:",
				"  Target: example.com",
				"  Recheck: False",
				"  Quick: True\n",
			},
		},
		{
			name:    "darkweb",
			service: results.Darkweb,
			req:     driver.Request{Target: "example.com"},
			want: []string{
				"\nImmuniWeb® Community Edition: Dark Web Exposure Test\n",
				"Target: example.com\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderHeader(tt.service, tt.req)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

const sslFixture = `{
	"results": {"grade": "B"},
	"internals": {
		"ts": 1700000000,
		"short_id": "s5",
		"scores": {
			"hipaa": {"class": "green", "description": "compliant"},
			"nist": {"class": "orange", "description": "non-compliant"},
			"pci_dss": {"class": "red", "description": "non-compliant"},
			"industry_best_practices": {"class": "green", "description": "good"}
		}
	},
	"server_info": {
		"unicode_hostname": {"value": "example.com"},
		"port": {"value": 443},
		"ip": {"value": "93.184.216.34"}
	},
	"highlights": [
		{"tag": 3, "highlight": "Weak cipher enabled", "highlight_id": 1},
		{"tag": 4, "highlight": "Server doesn&#039;t send OCSP", "highlight_id": 2},
		{"tag": 2, "highlight": "internal", "highlight_id": 32},
		{"tag": 1, "highlight": "TLSv1.3 supported", "highlight_id": 3}
	]
}`

func TestRenderSSL(t *testing.T) {
	text := renderText(t, results.SSL, sslFixture)

	assertContainsInOrder(t, text,
		"Tested Hostname: example.com",
		"Tested Port: 443",
		"Tested IP Address: 93.184.216.34",
		"Completed: November",
		"HIPAA",
		"Industry Best Practices",
		"Grade: B",
		"HIPAA Compliance Test: Compliant",
		"NIST Compliance Test: Non-Compliant",
		"PCI DSS Compliance Test: Non-Compliant",
		"Industry Best Practices: Good",
		"Notes:",
		"[Information] Server doesn't send OCSP",
		"[Good configuration] TLSv1.3 supported",
		"[Misconfiguration or weakness] Weak cipher enabled",
		"Check Details: "+testBaseURL+"/ssl/example.com/s5/",
	)
	if strings.Contains(text, "internal") {
		t.Fatalf("service note should be hidden:\n%s", text)
	}
}

func TestRenderSSLSkipsComplianceWithoutGrade(t *testing.T) {
	raw := strings.Replace(sslFixture, `"grade": "B"`, `"grade": "N"`, 1)
	text := renderText(t, results.SSL, raw)
	if strings.Contains(text, "HIPAA") || strings.Contains(text, "Compliance Test") {
		t.Fatalf("expected no compliance section for grade N:\n%s", text)
	}
	if !strings.Contains(text, "Grade: N") {
		t.Fatalf("expected grade line:\n%s", text)
	}

	noScores := `{"results": {"grade": "A"}, "server_info": {"unicode_hostname": {"value": "example.com"}}, "internals": {"short_id": "s"}}`
	text = renderText(t, results.SSL, noScores)
	if strings.Contains(text, "Compliance Test") {
		t.Fatalf("expected no compliance section without scores:\n%s", text)
	}
}

func TestNormalizeSSLText(t *testing.T) {
	in := "Contact &lt;b&gt;&lt;a onclick=&quot;return false&quot; href=&quot;#&quot; class=&quot;jumpto_email&quot;&gt;admin@example.com&lt;/a&gt;&lt;/b&gt; isn&#039;t listed"
	want := "Contact admin@example.com isn't listed"
	if got := normalizeSSLText(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewSSLNoteUnknownTag(t *testing.T) {
	note := newSSLNote(results.SSLHighlight{Tag: 99, Highlight: "x"})
	if note.title != "Information" || note.color != "yellow" {
		t.Fatalf("unexpected note %+v", note)
	}
}

func TestRenderDarkweb(t *testing.T) {
	raw := `{
		"assesment_date": "2023-11-15T08:00:00",
		"orig_url": "example.com",
		"unicode_orig_url": "example.com",
		"internals": {
			"id": 501,
			"scores": {
				"dark_web": {"class": "red", "description": "2 incidents found"},
				"phishing": {"class": "green", "description": "no phishing found"},
				"social_networks": {"class": "orange", "description": "1 fake account"},
				"typosquatting": {"class": "green", "description": "none"},
				"cybersquatting": {"class": "green", "description": "none"}
			}
		}
	}`
	text := renderText(t, results.Darkweb, raw)
	assertContainsInOrder(t, text,
		"Tested Domain: example.com",
		"Completed: November 1",
		"Dark Web Security Incidents",
		"Phishing Websites and Pages",
		"Dark Web Security Incidents: 2 Incidents Found",
		"Phishing Websites and Pages: No Phishing Found",
		"Cybersquatting Domain Names: None",
		"Typosquatting Domain Names: None",
		"Fake Accounts in Social Media: 1 Fake Account",
		"Check Details: "+testBaseURL+"/darkweb/example.com/501/",
	)
}

func TestRenderEmail(t *testing.T) {
	raw := `{
		"internals": {"hostname": "example.com", "short_id": "e1", "ts": 1700000000},
		"summary": {
			"server": {"color": "green", "text": "No issues found"},
			"ssl": {"color": "orange", "text": "1 issue found"},
			"dns": {"color": "green", "text": "No issues found"},
			"blacklists": {"color": "green", "text": "Not blacklisted"},
			"darkweb": {"color": "red", "text": "3 compromised credentials"},
			"phishing": {"color": "green", "text": "Nothing found"}
		}
	}`
	text := renderText(t, results.Email, raw)
	assertContainsInOrder(t, text,
		"Tested Domain: example.com",
		"Email Server Security",
		"Phishing and Domain Squatting",
		"Email Server Security: No issues found",
		"Email SSL/TLS Encryption: 1 issue found",
		"DNS Security: No issues found",
		"Email Server Blacklists: Not blacklisted",
		"Compromised Credentials: 3 compromised credentials",
		"Phishing and Domain Squatting: Nothing found",
		"Check Details: "+testBaseURL+"/email/example.com/e1/",
	)
}

func TestRenderMobile(t *testing.T) {
	raw := `{
		"status": "done",
		"scores": {
			"owasp_top_10": {"class": "red", "description": "2 issues found"},
			"behaviour": {"class": "green", "description": "no issues found"},
			"sca": {"class": "orange", "description": "1 outdated library"},
			"apis": {"class": "green", "description": "no issues found"}
		},
		"data": {"app_info": {
			"ts_stop": 1700000000,
			"app_name": "Example",
			"app_id": "com.example.app",
			"app_version": 2.1,
			"app_developer": "Example Inc.",
			"device_type": "android",
			"test_short_id": "m1"
		}}
	}`
	text := renderText(t, results.Mobile, raw)
	assertContainsInOrder(t, text,
		"App Name: Example",
		"App ID: com.example.app",
		"Version: 2.1",
		"Developer: Example Inc.",
		"OS: Android",
		"OWASP Mobile Top 10 Security",
		"OWASP Mobile Top 10 Security Test: 2 Issues Found",
		"Mobile App Privacy and Behavior: No Issues Found",
		"Software Composition Analysis Test: 1 Outdated Library",
		"Mobile App External Communications: No Issues Found",
		"Check Details: "+testBaseURL+"/mobile/com.example.app/m1/",
	)
}

func TestRenderCloud(t *testing.T) {
	raw := `{
		"parameters": {"target": "example.com", "quick": true},
		"result": {
			"brand": "Example Corp",
			"cloud": {
				"stats": {"buckets_total": 12, "public_buckets": 0, "files_total": 40},
				"buckets": {
					"aws": [
						{"type": "Amazon S3", "status": "public", "total_files": 5},
						{"type": "Amazon S3", "status": "private", "total_files": 0}
					],
					"gcp": []
				}
			}
		},
		"created_at": "2023-11-14T10:00:00",
		"finished_at": "2023-11-14T10:03:30"
	}`
	text := renderText(t, results.Cloud, raw)
	assertContainsInOrder(t, text,
		"Tested Domain: example.com",
		"Domain name example.com seems to be operated by Example Corp.",
		"Test Date: November 14, 2023 10:03:30",
		"Test Runtime: 3 minutes",
		"Quick: True",
		"╭────────────────────╮",
		"│ Total buckets   12 │",
		"│ Public buckets   0 │",
		"│ Public files    40 │",
		"Total    Public    Public",
		"buckets   buckets     files",
		"Amazon S3         2         1         5",
		"A quick test was performed, refresh test with parameter '--quick false'",
		"Check Details: "+testBaseURL+"/cloud/example.com/",
	)
	if strings.Count(text, "Amazon S3") != 1 {
		t.Fatalf("expected one provider row:\n%s", text)
	}
}

func TestRenderCloudSingleMinute(t *testing.T) {
	raw := `{
		"parameters": {"target": "example.com", "quick": false},
		"result": {"cloud": {"stats": {}, "buckets": []}},
		"created_at": "2023-11-14T10:00:00",
		"finished_at": "2023-11-14T10:01:10"
	}`
	text := renderText(t, results.Cloud, raw)
	if !strings.Contains(text, "Test Runtime: 1 minute") {
		t.Fatalf("expected singular minute:\n%s", text)
	}
	if strings.Contains(text, "1 minutes") || strings.Contains(text, "quick test was performed") || strings.Contains(text, "buckets   buckets") {
		t.Fatalf("unexpected cloud output:\n%s", text)
	}
}

func TestRenderReportRejectsIncompleteWebsec(t *testing.T) {
	raw := `{"grade": "A", "unicode_hostname": "example.com", "short_id": "x", "internals": {"scores": {}}}`
	_, err := renderReport(results.Websec, []byte(raw), reportContext{baseURL: testBaseURL, now: fixedNow})
	if err == nil || !strings.Contains(err.Error(), "internals.scores.pci_dss") {
		t.Fatalf("expected missing score error, got %v", err)
	}
}

func TestCompletedAtMarksOldResults(t *testing.T) {
	var ts results.Timestamp
	if err := ts.UnmarshalJSON([]byte("1700000000")); err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	want := ts.Local().Format(reportTimeLayout)
	if got := completedAt(ts, fixedNow); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
