package core

import (
	"time"
)

// DefaultFreshnessWindow is how long a stored composite result stays
// usable before a new analysis pass is required.
const DefaultFreshnessWindow = 5 * time.Minute

// SSLInfo describes the certificate presented by the analyzed host.
type SSLInfo struct {
	Issuer       map[string]string `json:"issuer,omitempty"`
	Subject      map[string]string `json:"subject,omitempty"`
	Version      int               `json:"version,omitempty"`
	SerialNumber string            `json:"serial_number,omitempty"`
	NotBefore    *time.Time        `json:"not_before,omitempty"`
	NotAfter     *time.Time        `json:"not_after,omitempty"`
}

// WhoisInfo carries the registration details for a domain.
type WhoisInfo struct {
	Registrar      string     `json:"registrar,omitempty"`
	CreationDate   *time.Time `json:"creation_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	UpdatedDate    *time.Time `json:"updated_date,omitempty"`
	NameServers    []string   `json:"name_servers,omitempty"`
	Status         []string   `json:"status,omitempty"`
}

// BlacklistCheck is the outcome of consulting one threat list.
type BlacklistCheck struct {
	Source   string `json:"source"`
	IsListed bool   `json:"is_listed"`
	Details  string `json:"details,omitempty"`
}

// DomainFacts bundles everything a facts provider learned about an
// address. A provider populates it atomically: either the fields are
// filled in or Error explains why they could not be.
type DomainFacts struct {
	DomainName      string              `json:"domain_name,omitempty"`
	Scheme          string              `json:"parsed_url_scheme,omitempty"`
	Path            string              `json:"parsed_url_path,omitempty"`
	Query           string              `json:"parsed_url_query,omitempty"`
	DNSRecords      map[string][]string `json:"dns_records,omitempty"`
	SSLInfo         *SSLInfo            `json:"ssl_info,omitempty"`
	WhoisInfo       *WhoisInfo          `json:"whois_info,omitempty"`
	DomainAgeDays   *int                `json:"domain_actual_age_days,omitempty"`
	BlacklistChecks []BlacklistCheck    `json:"blacklist_checks,omitempty"`
	IsIPAddress     bool                `json:"is_ip_address_in_url"`
	Error           string              `json:"error,omitempty"`
}

// TextVerdict is a classifier's judgement of one piece of text.
type TextVerdict struct {
	IsPhishing bool    `json:"is_phishing"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// FragmentVerdict is a TextVerdict for one page-content fragment. The
// preview is capped so stored records stay small.
type FragmentVerdict struct {
	TextVerdict
	FragmentIndex int    `json:"fragment_index"`
	Preview       string `json:"fragment_preview"`
}

// CompositeResult is the full bundle of signals gathered by one analysis
// pass. It is the unit stored in the freshness cache and the unit
// consumed by the trust-score aggregator.
//
// URLChecked and FragmentsAnalyzed distinguish "not attempted" from
// "attempted and failed": an attempted-but-failed URL classification is
// URLChecked with a nil URLVerdict, and a failed fragment batch is
// FragmentsAnalyzed with a nil slice. A successfully analyzed page with
// no usable text yields an empty, non-nil slice.
type CompositeResult struct {
	Facts             *DomainFacts      `json:"analysis,omitempty"`
	URLVerdict        *TextVerdict      `json:"url_text_analysis,omitempty"`
	URLChecked        bool              `json:"url_checked"`
	FragmentVerdicts  []FragmentVerdict `json:"page_content_analyses"`
	FragmentsAnalyzed bool              `json:"fragments_analyzed"`
	Trusted           bool              `json:"trusted,omitempty"`
	ComputedAt        time.Time         `json:"computed_at"`
	PassSeq           uint64            `json:"pass_seq,omitempty"`
	PassID            string            `json:"pass_id,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// Usable reports whether a cached result can stand in for a fresh
// analysis pass at the given time. A record qualifies only when it holds
// complete, non-error domain facts and is younger than the window.
func (r *CompositeResult) Usable(now time.Time, window time.Duration) bool {
	if r == nil || r.Error != "" {
		return false
	}
	if r.Facts == nil || r.Facts.Error != "" {
		return false
	}
	if !r.URLChecked || !r.FragmentsAnalyzed || r.FragmentVerdicts == nil {
		return false
	}
	return now.Sub(r.ComputedAt) < window
}
