package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Impact classifies how a signal moved the trust score.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
	ImpactInfo     Impact = "info"
)

// ObservedKind discriminates the Observed variant.
type ObservedKind string

const (
	ObservedText    ObservedKind = "text"
	ObservedMatches ObservedKind = "matches"
)

// SuspectFragment is one flagged content excerpt surfaced in an
// explanation.
type SuspectFragment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Excerpt    string  `json:"excerpt"`
}

// Observed is a tagged display value: either plain text or a structured
// list of flagged fragments. Renderers switch on Kind instead of
// type-probing at runtime.
type Observed struct {
	Kind    ObservedKind      `json:"kind"`
	Text    string            `json:"text,omitempty"`
	Matches []SuspectFragment `json:"matches,omitempty"`
}

// TextValue builds a plain-text observed value.
func TextValue(s string) Observed {
	return Observed{Kind: ObservedText, Text: s}
}

// MatchesValue builds a structured observed value from flagged fragments.
func MatchesValue(matches []SuspectFragment) Observed {
	return Observed{Kind: ObservedMatches, Matches: matches}
}

// Explanation justifies one signal's contribution to the score. Effect is
// the delta actually applied, so summing the effects of all explanations
// onto the neutral prior reproduces the unclamped score.
type Explanation struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Value   Observed  `json:"value"`
	Impact  Impact    `json:"impact"`
	Effect  int       `json:"effect"`
	Details string    `json:"details"`
	Long    *Observed `json:"long,omitempty"`
}

// TrustScore bundles the clamped score with its ordered explanations.
// Higher means more trustworthy.
type TrustScore struct {
	Score        int           `json:"score"`
	Explanations []Explanation `json:"explanations"`
}

// Score band and confidence thresholds shared by the rule table.
const (
	neutralPrior       = 50
	scoreMin           = 0
	scoreMax           = 100
	highConfidence     = 0.9
	mediumConfidence   = 0.7
	certExpirySoonDays = 30
	manyFlaggedCount   = 3
)

// pts is the canonical weighting table. Exactly one generation of the
// ruleset exists; changing a weight here changes it everywhere.
var pts = struct {
	ageUnknown    int
	ageVeryYoung  int
	ageYoung      int
	ageMature     int
	ageVeryMature int

	sslNone         int
	sslProblem      int
	sslExpired      int
	sslExpiringSoon int
	sslValid        int
	sslUnknown      int

	urlFailed    int
	urlPhishHigh int
	urlPhishMed  int
	urlPhishLow  int
	urlLegitHigh int
	urlLegitMed  int

	contentFailed int
	contentHigh   int
	contentMed    int
	contentLow    int
	contentMany   int
	contentFloor  int
	contentClean  int

	blacklistBase  int
	blacklistExtra int
	blacklistClean int

	ipLiteral int

	mxMissing int
	mxPresent int
}{
	ageUnknown:    -5,
	ageVeryYoung:  -25,
	ageYoung:      -15,
	ageMature:     10,
	ageVeryMature: 15,

	sslNone:         -25,
	sslProblem:      -20,
	sslExpired:      -20,
	sslExpiringSoon: -5,
	sslValid:        10,
	sslUnknown:      -10,

	urlFailed:    -5,
	urlPhishHigh: -30,
	urlPhishMed:  -20,
	urlPhishLow:  -10,
	urlLegitHigh: 10,
	urlLegitMed:  5,

	contentFailed: -10,
	contentHigh:   -10,
	contentMed:    -6,
	contentLow:    -3,
	contentMany:   -5,
	contentFloor:  -10,
	contentClean:  5,

	blacklistBase:  -25,
	blacklistExtra: -10,
	blacklistClean: 5,

	ipLiteral: -20,

	mxMissing: -10,
	mxPresent: 10,
}

// CalculateTrustScore evaluates the rule table over a composite result
// and returns the clamped score with one explanation per signal, in
// fixed display order. It returns nil when the composite carries no
// domain facts to score.
func CalculateTrustScore(res *CompositeResult) *TrustScore {
	return calculateTrustScoreAt(res, time.Now())
}

func calculateTrustScoreAt(res *CompositeResult, now time.Time) *TrustScore {
	if res == nil {
		return nil
	}
	if res.Trusted {
		return &TrustScore{
			Score: scoreMax,
			Explanations: []Explanation{{
				ID:      "trusted",
				Label:   "Trusted domain",
				Value:   TextValue("On trusted list"),
				Impact:  ImpactInfo,
				Effect:  scoreMax - neutralPrior,
				Details: "The host is on the operator's trusted-domain list; signal checks were skipped.",
			}},
		}
	}
	if res.Facts == nil {
		return nil
	}

	explanations := []Explanation{
		scoreDomainAge(res.Facts),
		scoreCertificate(res.Facts, now),
		scoreURLVerdict(res),
		scoreContent(res),
		scoreBlacklist(res.Facts),
		scoreIPLiteral(res.Facts),
		scoreMailExchange(res.Facts),
	}

	score := neutralPrior
	for _, e := range explanations {
		score += e.Effect
	}
	if score < scoreMin {
		score = scoreMin
	}
	if score > scoreMax {
		score = scoreMax
	}
	return &TrustScore{Score: score, Explanations: explanations}
}

// formatDomainAge renders a registration age for display.
func formatDomainAge(days int) string {
	switch {
	case days < 0:
		return "future date (suspicious)"
	case days < 30:
		return fmt.Sprintf("%d days (very young)", days)
	case days < 365:
		return fmt.Sprintf("%d mo. (young)", days/30)
	default:
		years := days / 365
		months := (days % 365) / 30
		if months > 0 {
			return fmt.Sprintf("%d yr %d mo (mature)", years, months)
		}
		return fmt.Sprintf("%d yr (mature)", years)
	}
}

func scoreDomainAge(facts *DomainFacts) Explanation {
	e := Explanation{
		ID:      "age",
		Label:   "Domain age",
		Value:   TextValue("N/A"),
		Impact:  ImpactNeutral,
		Details: "Older domains are generally more trustworthy.",
	}
	age := facts.DomainAgeDays
	if age == nil {
		e.Effect = pts.ageUnknown
		e.Impact = ImpactInfo
		e.Details = "No registration age data available."
		return e
	}
	e.Value = TextValue(formatDomainAge(*age))
	switch {
	case *age < 30:
		e.Effect = pts.ageVeryYoung
		e.Impact = ImpactNegative
		e.Details = "Very recently registered domains are frequently used in phishing campaigns."
	case *age < 180:
		e.Effect = pts.ageYoung
		e.Impact = ImpactNegative
		e.Details = "The domain was registered less than six months ago."
	case *age >= 730:
		e.Effect = pts.ageVeryMature
		e.Impact = ImpactPositive
		e.Details = "The domain has been registered for over two years."
	case *age >= 365:
		e.Effect = pts.ageMature
		e.Impact = ImpactPositive
		e.Details = "The domain has been registered for over a year."
	}
	return e
}

func scoreCertificate(facts *DomainFacts, now time.Time) Explanation {
	e := Explanation{
		ID:    "ssl",
		Label: "Encryption (SSL)",
	}
	if facts.Scheme == "https" {
		ssl := facts.SSLInfo
		if ssl == nil || ssl.NotAfter == nil {
			e.Effect = pts.sslProblem
			e.Impact = ImpactNegative
			e.Value = TextValue("Problem (HTTPS)")
			e.Details = "The page uses HTTPS but the certificate could not be verified."
			return e
		}
		daysToExpiry := ssl.NotAfter.Sub(now).Hours() / 24
		switch {
		case daysToExpiry <= 0:
			e.Effect = pts.sslExpired
			e.Impact = ImpactNegative
			e.Value = TextValue("Expired")
			e.Details = fmt.Sprintf("The SSL certificate expired on %s.", ssl.NotAfter.Format("2006-01-02"))
		case daysToExpiry < certExpirySoonDays:
			e.Effect = pts.sslExpiringSoon
			e.Impact = ImpactNegative
			e.Value = TextValue("Expires soon")
			e.Details = fmt.Sprintf("The connection is encrypted but the certificate expires in under %d days.", certExpirySoonDays)
		default:
			e.Effect = pts.sslValid
			e.Impact = ImpactPositive
			e.Value = TextValue("Valid")
			e.Details = fmt.Sprintf("The connection is encrypted; certificate valid until %s.", ssl.NotAfter.Format("2006-01-02"))
		}
		return e
	}
	if facts.SSLInfo == nil {
		e.Effect = pts.sslNone
		e.Impact = ImpactNegative
		e.Value = TextValue("None (HTTP)")
		e.Details = "The page does not use HTTPS encryption."
		return e
	}
	e.Effect = pts.sslUnknown
	e.Impact = ImpactInfo
	e.Value = TextValue("N/A (SSL)")
	e.Details = "The SSL status could not be determined unambiguously."
	return e
}

func scoreURLVerdict(res *CompositeResult) Explanation {
	e := Explanation{
		ID:    "aiUrl",
		Label: "Address classifier",
	}
	if !res.URLChecked {
		e.Impact = ImpactNeutral
		e.Value = TextValue("Not available")
		e.Details = "The address has not been classified yet."
		return e
	}
	v := res.URLVerdict
	if v == nil {
		e.Effect = pts.urlFailed
		e.Impact = ImpactNegative
		e.Value = TextValue("Analysis failed")
		e.Details = "The address could not be classified due to an error."
		return e
	}
	e.Value = TextValue(fmt.Sprintf("%s (%.0f%%)", v.Label, v.Confidence*100))
	e.Details = fmt.Sprintf("The classifier judged the address %s with %.0f%% confidence.",
		strings.ToLower(v.Label), v.Confidence*100)
	if v.IsPhishing {
		e.Impact = ImpactNegative
		switch {
		case v.Confidence >= highConfidence:
			e.Effect = pts.urlPhishHigh
		case v.Confidence >= mediumConfidence:
			e.Effect = pts.urlPhishMed
		default:
			e.Effect = pts.urlPhishLow
		}
		return e
	}
	switch {
	case v.Confidence >= highConfidence:
		e.Effect = pts.urlLegitHigh
		e.Impact = ImpactPositive
	case v.Confidence >= mediumConfidence:
		e.Effect = pts.urlLegitMed
		e.Impact = ImpactNeutral
	default:
		e.Impact = ImpactNeutral
	}
	return e
}

func scoreContent(res *CompositeResult) Explanation {
	e := Explanation{
		ID:    "contentAi",
		Label: "Content classifier",
	}
	if !res.FragmentsAnalyzed {
		e.Impact = ImpactNeutral
		e.Value = TextValue("N/A (content)")
		e.Details = "Page content has not been classified yet."
		return e
	}
	verdicts := res.FragmentVerdicts
	if verdicts == nil {
		e.Effect = pts.contentFailed
		e.Impact = ImpactNegative
		e.Value = TextValue("Content analysis failed")
		e.Details = "An error occurred while classifying the page content."
		return e
	}
	if len(verdicts) == 0 {
		e.Impact = ImpactNeutral
		e.Value = TextValue("No text found")
		e.Details = "Not enough text was found on the page to run a content analysis."
		return e
	}

	var suspects []SuspectFragment
	var highTier, medTier bool
	for _, v := range verdicts {
		if !v.IsPhishing {
			continue
		}
		switch {
		case v.Confidence >= highConfidence:
			highTier = true
		case v.Confidence >= mediumConfidence:
			medTier = true
		}
		suspects = append(suspects, SuspectFragment{
			Label:      v.Label,
			Confidence: v.Confidence,
			Excerpt:    v.Preview,
		})
	}

	if len(suspects) == 0 {
		e.Effect = pts.contentClean
		e.Impact = ImpactPositive
		e.Value = TextValue("Content OK")
		e.Details = fmt.Sprintf("Content analysis of %d fragments found no signs of phishing.", len(verdicts))
		return e
	}

	sort.Slice(suspects, func(i, j int) bool { return suspects[i].Confidence > suspects[j].Confidence })

	switch {
	case highTier:
		e.Effect = pts.contentHigh
		e.Value = TextValue("Suspicious content!")
	case medTier:
		e.Effect = pts.contentMed
		e.Value = TextValue("Suspicious fragments")
	default:
		e.Effect = pts.contentLow
		e.Value = TextValue("Ambiguous fragments")
	}
	e.Impact = ImpactNegative
	e.Details = fmt.Sprintf("Flagged %d of %d fragments as potentially phishing.", len(suspects), len(verdicts))
	if len(suspects) >= manyFlaggedCount {
		e.Effect += pts.contentMany
		e.Details += " Multiple suspicious fragments were found."
	}
	// The total fragment penalty is floored regardless of tier or count.
	if e.Effect < pts.contentFloor {
		e.Effect = pts.contentFloor
	}
	long := MatchesValue(suspects)
	e.Long = &long
	return e
}

func scoreBlacklist(facts *DomainFacts) Explanation {
	e := Explanation{
		ID:    "blacklist",
		Label: "Threat lists",
	}
	var listed []string
	for _, c := range facts.BlacklistChecks {
		if c.IsListed {
			listed = append(listed, c.Source)
		}
	}
	if len(listed) == 0 {
		e.Effect = pts.blacklistClean
		e.Impact = ImpactPositive
		e.Value = TextValue("Clean")
		e.Details = "Not found on any known threat list."
		e.Long = observedPtr(TextValue("Absence from the major threat lists is a good sign that the page has not been publicly flagged as malicious."))
		return e
	}
	e.Effect = pts.blacklistBase + pts.blacklistExtra*(len(listed)-1)
	e.Impact = ImpactNegative
	e.Value = TextValue("Listed: " + strings.Join(listed, ", "))
	e.Details = fmt.Sprintf("Presence on public threat lists (%s) is a strong warning signal.", strings.Join(listed, ", "))
	e.Long = observedPtr(TextValue("Threat lists are compiled by security organizations to track malicious websites."))
	return e
}

func scoreIPLiteral(facts *DomainFacts) Explanation {
	e := Explanation{
		ID:    "ipInUrl",
		Label: "IP address in URL",
	}
	if facts.IsIPAddress {
		e.Effect = pts.ipLiteral
		e.Impact = ImpactNegative
		e.Value = TextValue("Yes")
		e.Details = "Using an IP address instead of a domain name is a common phishing tactic."
		return e
	}
	e.Impact = ImpactPositive
	e.Value = TextValue("No")
	e.Details = "The address uses a standard domain name."
	return e
}

func scoreMailExchange(facts *DomainFacts) Explanation {
	e := Explanation{
		ID:    "dnsMx",
		Label: "MX records",
	}
	mx, ok := lookupMX(facts.DNSRecords)
	if !ok {
		e.Impact = ImpactNeutral
		e.Value = TextValue("Not applicable")
		e.Details = "No MX record data available."
		return e
	}
	if len(mx) == 0 {
		e.Effect = pts.mxMissing
		e.Impact = ImpactNegative
		e.Value = TextValue("Missing")
		e.Details = "The domain has no MX records."
		return e
	}
	e.Effect = pts.mxPresent
	e.Impact = ImpactPositive
	e.Value = TextValue("Present")
	e.Details = "The domain has MX records."
	return e
}

func lookupMX(records map[string][]string) ([]string, bool) {
	if records == nil {
		return nil, false
	}
	mx, ok := records["MX"]
	return mx, ok
}

func observedPtr(o Observed) *Observed {
	return &o
}
