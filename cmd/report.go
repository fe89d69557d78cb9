package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/khanhnv2901/iwtools/internal/driver"
	"github.com/khanhnv2901/iwtools/internal/results"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
)

const reportTimeLayout = "January 02, 2006 15:04:05"

// reportContext carries what a renderer needs besides the payload.
type reportContext struct {
	baseURL string
	now     time.Time
}

type report struct {
	lines []string
}

func (r *report) add(parts ...string) {
	r.lines = append(r.lines, strings.Join(parts, ""))
}

// field renders "Label: value" with a bold label.
func (r *report) field(label, value string) {
	r.add(colorBold(label+": "), value)
}

func (r *report) banner(lines []string) {
	r.add("\n" + strings.Join(lines, "\n") + "\n")
}

// renderHeader is printed before the test starts.
func renderHeader(service results.Service, req driver.Request) []string {
	var r report
	r.add(
		paintBold("red", "\nImmuni"),
		paintBold("blue", "Web®"),
		colorBold(" Community Edition: "+service.Title()+"\n"),
	)

	switch service {
	case results.Websec, results.SSL:
		ip := req.IP
		if ip == "" || ip == consts.AnyIP {
			ip = "Not specified"
		}
		r.field("Target", req.Target)
		r.field("IP Address", ip+"\n")
	case results.Cloud:
		r.add("Input parameters:")
		r.field("  Target", req.Target)
		r.field("  Recheck", pyBool(req.Recheck))
		r.field("  Quick", pyBool(req.Quick)+"\n")
	default:
		r.field("Target", req.Target+"\n")
	}
	return r.lines
}

// renderReport formats a completed result as colorized text.
func renderReport(service results.Service, raw []byte, rc reportContext) ([]string, error) {
	doc, err := results.Decode(service, raw)
	if err != nil {
		return nil, err
	}
	link, err := driver.Link(rc.baseURL, service, raw)
	if err != nil {
		return nil, err
	}

	var r report
	switch res := doc.(type) {
	case *results.WebsecResult:
		err = renderWebsec(&r, res, rc)
	case *results.SSLResult:
		err = renderSSL(&r, res, rc)
	case *results.DarkwebResult:
		renderDarkweb(&r, res, rc)
	case *results.EmailResult:
		renderEmail(&r, res, rc)
	case *results.MobileResult:
		renderMobile(&r, res, rc)
	case *results.CloudResult:
		renderCloud(&r, res)
	default:
		err = fmt.Errorf("no report for %s", service)
	}
	if err != nil {
		return nil, err
	}

	r.add(colorBold("\nCheck Details: "), colorInfo(link))
	return r.lines, nil
}

var websecGroups = map[string]string{
	"http_headers": "HTTP Headers Security",
	"http_cookies": "Cookies Security",
	"app_scan":     "Software Security",
}

func renderWebsec(r *report, res *results.WebsecResult, rc reportContext) error {
	scores := res.Internals.Scores
	pciDSS, err := requireScore(scores.PCIDSS, "internals.scores.pci_dss")
	if err != nil {
		return err
	}
	gdpr, err := requireScore(scores.GDPR, "internals.scores.gdpr")
	if err != nil {
		return err
	}
	csp, err := requireScore(scores.CSP, "internals.scores.csp")
	if err != nil {
		return err
	}
	appScan, err := requireScore(scores.AppScan, "internals.scores.app_scan")
	if err != nil {
		return err
	}
	headers, err := requireScore(scores.HTTPHeaders, "internals.scores.http_headers")
	if err != nil {
		return err
	}

	grade := strings.ToLower(res.Grade)
	gColor := gradeColor(grade)
	pciColor := websecColors.normalize(pciDSS.Class)
	gdprColor := websecColors.normalize(gdpr.Class)
	cspColor := websecColors.normalize(csp.Class)
	appColor := websecColors.normalize(appScan.Class)
	headersColor := websecColors.normalize(headers.Class)

	r.field("Source URL", res.SourceURL)
	r.field("Tested URL", res.TestedURL)
	r.field("Tested IP Address", res.ServerIP)
	r.field("Completed", completedAt(res.TS, rc.now))
	r.banner(columns(
		gradeBlock(grade, gColor),
		stack(
			newTile(tile{"PCI DSS", pciColor}, 13),
			newTile(tile{"EU GDPR", gdprColor}, 13),
			newTile(tile{"CSP", cspColor}, 13),
		),
		stack(
			newTile(tile{"Software Security Test", appColor}, 33),
			newTile(tile{"Headers Security Test", headersColor}, 33),
		),
	))

	r.field("Grade", paintBold(gColor, res.Grade))
	r.field("PCI DSS Compliance Test", paint(pciColor, titleCase(pciDSS.Description)))
	r.field("EU GDPR Compliance Test", paint(gdprColor, titleCase(gdpr.Description)))
	r.field("Content Security Policy Test", paint(cspColor, titleCase(csp.Description)))
	r.field("Software Security Test", paint(appColor, titleCase(appScan.Description)))
	r.field("Headers Security Test", paint(headersColor, titleCase(headers.Description)))

	if len(res.GlobalHighlights) > 0 {
		r.add(colorBold("\nNotes:"))
	}
	for _, text := range res.TextHighlights() {
		r.add(websecNote(text))
	}

	var order []string
	grouped := map[string][]string{}
	for _, h := range res.Highlights {
		if _, seen := grouped[h.Location]; !seen {
			order = append(order, h.Location)
		}
		grouped[h.Location] = append(grouped[h.Location], h.Highlight)
	}
	for _, location := range order {
		name, ok := websecGroups[location]
		if !ok {
			name = location
		}
		r.add(colorBold("\n" + name + " Notes:"))
		for _, text := range grouped[location] {
			r.add(websecNote(text))
		}
	}
	return nil
}

func websecNote(highlight string) string {
	text, status := results.ParseHighlightStatus(highlight)
	var title, color string
	switch status {
	case 0:
		title, color = "Empty", "green"
	case 1:
		title, color = "Good configuration", "green"
	case 2, 3, 5, 6:
		title, color = "Misconfiguration or Weakness", "yellow"
	default:
		title, color = "Information", "blue"
	}
	return paint(color, "["+title+"]") + " " + text
}

var sslNoteTitles = []string{
	"Empty",
	"Good configuration",
	"Non-compliant with NIST guidelines",
	"Misconfiguration or weakness",
	"Information",
	"Non-compliant with PCI DSS requirements",
	"Non-compliant with PCI DSS and NIST",
	"Not vulnerable",
	"Deprecated. Dropped since June 2018",
	"Non-compliant with HIPAA guidance",
	"Non-compliant with HIPAA and NIST",
	"Non-compliant with PCI DSS and HIPAA",
	"Non-compliant with PCI DSS, HIPAA and NIST",
	"No Encryption",
}

var sslNoteOrder = map[string]int{"blue": 0, "green": 1, "yellow": 2}

// sslServiceNote is an internal vendor note that is never shown.
const sslServiceNote = 32

type sslNote struct {
	title string
	color string
	text  string
}

func newSSLNote(h results.SSLHighlight) sslNote {
	note := sslNote{title: "Information", color: "yellow", text: normalizeSSLText(h.Highlight)}
	if h.Tag >= 0 && h.Tag < len(sslNoteTitles) {
		note.title = sslNoteTitles[h.Tag]
	}
	switch h.Tag {
	case 4:
		note.color = "blue"
	case 0, 1, 7, 8:
		note.color = "green"
	}
	return note
}

var sslTextReplacer = strings.NewReplacer(
	"&#039;", "'",
	"&lt;b&gt;&lt;a onclick=&quot;return false&quot; href=&quot;#&quot; class=&quot;jumpto_email&quot;&gt;", "",
	"&lt;/a&gt;&lt;/b&gt;", "",
)

// normalizeSSLText unescapes apostrophes and drops the e-mail anchor markup
// the vendor embeds in some notes.
func normalizeSSLText(text string) string {
	return sslTextReplacer.Replace(text)
}

func renderSSL(r *report, res *results.SSLResult, rc reportContext) error {
	grade := strings.ToLower(res.Grade())
	gColor := gradeColor(grade)

	scores := res.Internals.Scores
	hipaa := optionalScore(scores.HIPAA)
	nist := optionalScore(scores.NIST)
	pciDSS := optionalScore(scores.PCIDSS)
	ibp := optionalScore(scores.IndustryBestPractices)

	hipaaColor := sslColors.normalize(hipaa.Class)
	nistColor := sslColors.normalize(nist.Class)
	pciColor := sslColors.normalize(pciDSS.Class)
	ibpColor := sslColors.normalize(ibp.Class)

	skipCompliance := grade == "n" || (hipaaColor == "" && nistColor == "" && pciColor == "" && ibpColor == "")

	info := res.ServerInfo
	r.field("Tested Hostname", info.UnicodeHostname.Value.String())
	r.field("Tested Port", info.Port.Value.String())
	r.field("Tested IP Address", info.IP.Value.String())
	r.field("Completed", completedAt(res.Internals.TS, rc.now))

	if skipCompliance {
		r.banner(gradeBlock(grade, gColor).lines)
	} else {
		r.banner(columns(
			gradeBlock(grade, gColor),
			stack(
				newTile(tile{"HIPAA", hipaaColor}, 13),
				newTile(tile{"NIST", nistColor}, 13),
				newTile(tile{"PCI DSS", pciColor}, 13),
			),
			newTile(tile{"Industry Best Practices", ibpColor}, 33),
		))
	}

	r.field("Grade", paintBold(gColor, res.Grade()))
	if !skipCompliance {
		r.field("HIPAA Compliance Test", paint(hipaaColor, titleCase(hipaa.Description)))
		r.field("NIST Compliance Test", paint(nistColor, titleCase(nist.Description)))
		r.field("PCI DSS Compliance Test", paint(pciColor, titleCase(pciDSS.Description)))
		r.field("Industry Best Practices", paint(ibpColor, titleCase(ibp.Description)))
	}

	notes := make([]sslNote, 0, len(res.Highlights))
	for _, h := range res.Highlights {
		if h.HighlightID == sslServiceNote {
			continue
		}
		notes = append(notes, newSSLNote(h))
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return sslNoteOrder[notes[i].color] < sslNoteOrder[notes[j].color]
	})

	if len(notes) > 0 {
		r.add(colorBold("\nNotes:"))
	}
	for _, n := range notes {
		r.add(paintBold(n.color, "["+n.title+"]"), " ", n.text)
	}
	return nil
}

func renderDarkweb(r *report, res *results.DarkwebResult, rc reportContext) {
	scores := res.Internals.Scores
	darkWeb := darkwebColors.normalize(scores.DarkWeb.Class)
	phishing := darkwebColors.normalize(scores.Phishing.Class)
	social := darkwebColors.normalize(scores.SocialNetworks.Class)
	typo := darkwebColors.normalize(scores.Typosquatting.Class)
	cyber := darkwebColors.normalize(scores.Cybersquatting.Class)

	r.field("Tested Domain", res.OrigURL)
	r.field("Completed", completedAt(res.AssessmentDate, rc.now))
	r.banner(tileGrid([][]tile{
		{{"Dark Web Security Incidents", darkWeb}, {"Fake Accounts in Social Media", social}},
		{{"Cybersquatting Domain Names", cyber}, {"Typosquatting Domain Names", typo}},
		{{"Phishing Websites and Pages", phishing}},
	}))

	r.field("Dark Web Security Incidents", paint(darkWeb, titleCase(scores.DarkWeb.Description)))
	r.field("Phishing Websites and Pages", paint(phishing, titleCase(scores.Phishing.Description)))
	r.field("Cybersquatting Domain Names", paint(cyber, titleCase(scores.Cybersquatting.Description)))
	r.field("Typosquatting Domain Names", paint(typo, titleCase(scores.Typosquatting.Description)))
	r.field("Fake Accounts in Social Media", paint(social, titleCase(scores.SocialNetworks.Description)))
}

func renderEmail(r *report, res *results.EmailResult, rc reportContext) {
	s := res.Summary
	server := emailColors.normalize(s.Server.Color)
	ssl := emailColors.normalize(s.SSL.Color)
	dns := emailColors.normalize(s.DNS.Color)
	blacklists := emailColors.normalize(s.Blacklists.Color)
	darkweb := emailColors.normalize(s.Darkweb.Color)
	phishing := emailColors.normalize(s.Phishing.Color)

	r.field("Tested Domain", res.Internals.Hostname)
	r.field("Completed", completedAt(res.Internals.TS, rc.now))
	r.banner(tileGrid([][]tile{
		{{"Email Server Security", server}, {"Email SSL/TLS Encryption", ssl}},
		{{"DNS Security", dns}, {"Email Server Blacklists", blacklists}},
		{{"Compromised Credentials", darkweb}, {"Phishing and Domain Squatting", phishing}},
	}))

	r.field("Email Server Security", paint(server, s.Server.Text))
	r.field("Email SSL/TLS Encryption", paint(ssl, s.SSL.Text))
	r.field("DNS Security", paint(dns, s.DNS.Text))
	r.field("Email Server Blacklists", paint(blacklists, s.Blacklists.Text))
	r.field("Compromised Credentials", paint(darkweb, s.Darkweb.Text))
	r.field("Phishing and Domain Squatting", paint(phishing, s.Phishing.Text))
}

func renderMobile(r *report, res *results.MobileResult, rc reportContext) {
	info := res.Data.AppInfo
	scores := res.Scores
	owasp := mobileColors.normalize(scores.OWASPTop10.Class)
	behaviour := mobileColors.normalize(scores.Behaviour.Class)
	sca := mobileColors.normalize(scores.SCA.Class)
	apis := mobileColors.normalize(scores.APIs.Class)

	r.field("App Name", info.AppName)
	r.field("App ID", info.AppID)
	r.field("Version", info.AppVersion.String())
	r.field("Developer", info.AppDeveloper)
	r.field("OS", titleCase(info.DeviceType))
	r.field("Completed", completedAt(info.TSStop, rc.now))
	r.banner(tileGrid([][]tile{
		{{"OWASP Mobile Top 10 Security", owasp}, {"Mobile App External Communications", apis}},
		{{"Software Composition Analysis", sca}, {"Mobile App Privacy and Behavior", behaviour}},
	}))

	r.field("OWASP Mobile Top 10 Security Test", paint(owasp, titleCase(scores.OWASPTop10.Description)))
	r.field("Mobile App Privacy and Behavior", paint(behaviour, titleCase(scores.Behaviour.Description)))
	r.field("Software Composition Analysis Test", paint(sca, titleCase(scores.SCA.Description)))
	r.field("Mobile App External Communications", paint(apis, titleCase(scores.APIs.Description)))
}

const bucketColumnWidth = 9

func renderCloud(r *report, res *results.CloudResult) {
	target := res.Parameters.Target
	r.field("Tested Domain", target)
	if brand := res.Result.Brand; brand != "" {
		r.add(fmt.Sprintf("Domain name %s seems to be operated by %s.", target, brand))
	}

	finished := res.FinishedAt.Time
	r.field("Test Date", finished.Format(reportTimeLayout))
	minutes := int(finished.Sub(res.CreatedAt.Time) / time.Minute)
	unit := " minute"
	if minutes > 1 {
		unit = " minutes"
	}
	r.field("Test Runtime", strconv.Itoa(minutes)+unit)
	r.field("Quick", pyBool(res.Parameters.Quick))

	r.banner(cloudStatsBox(res.Result.Cloud.Stats))

	rows := res.Result.Cloud.Buckets.Summaries()
	nameWidth := 0
	for _, row := range rows {
		if n := len([]rune(row.Name)); n > nameWidth {
			nameWidth = n
		}
	}
	if len(rows) > 0 {
		indent := strings.Repeat(" ", nameWidth)
		r.add(indent + "     Total    Public    Public")
		r.add(indent + "   buckets   buckets     files")
	}
	for _, row := range rows {
		r.add(
			padRight(row.Name, nameWidth), " ",
			colorWarn(padLeft(strconv.Itoa(row.Total), bucketColumnWidth)), " ",
			exposure(row.PublicBuckets, bucketColumnWidth), " ",
			exposure(row.PublicFiles, bucketColumnWidth),
		)
	}

	if res.Parameters.Quick {
		if len(rows) > 0 {
			r.add("")
		}
		r.add("A quick test was performed, refresh test with parameter '--quick false' to check for " +
			"exposure in more clouds")
	}
}

func cloudStatsBox(stats results.CloudStats) []string {
	width := len(strconv.Itoa(max(stats.BucketsTotal, stats.PublicBuckets, stats.FilesTotal)))
	line := strings.Repeat("─", width)
	return []string{
		"╭─────────────────" + line + "─╮",
		"│ Total buckets   " + colorWarn(padLeft(strconv.Itoa(stats.BucketsTotal), width)) + " │",
		"│ Public buckets  " + exposure(stats.PublicBuckets, width) + " │",
		"│ Public files    " + exposure(stats.FilesTotal, width) + " │",
		"╰─────────────────" + line + "─╯",
	}
}

// exposure renders a public count red when anything is exposed.
func exposure(n, width int) string {
	text := padLeft(strconv.Itoa(n), width)
	if n > 0 {
		return colorError(text)
	}
	return colorWarn(text)
}

// completedAt formats a result timestamp in local time, yellow once the
// result is older than a week.
func completedAt(ts results.Timestamp, now time.Time) string {
	text := ts.Local().Format(reportTimeLayout)
	if now.Sub(ts.Time) > consts.OutdatedResultAge {
		return colorWarn(text)
	}
	return text
}

func requireScore(s *results.Score, path string) (results.Score, error) {
	if s == nil {
		return results.Score{}, fmt.Errorf("result has no %s", path)
	}
	return *s, nil
}

func optionalScore(s *results.Score) results.Score {
	if s == nil {
		return results.Score{}
	}
	return *s
}

// pyBool spells booleans capitalized, as the vendor reports them.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
