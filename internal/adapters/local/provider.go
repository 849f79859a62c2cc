package local

import (
	"context"
	"crypto/tls"
	"crypto/x509/pkix"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

// whoisDateLayouts covers the registration date formats commonly seen in
// registrar responses.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// Provider computes domain facts in-process instead of delegating to the
// remote analysis service: WHOIS for registration data, the system
// resolver for DNS records, a TLS dial for certificate details and DNSBL
// queries for blacklist checks. Each sub-lookup fails independently; the
// returned facts carry whatever could be gathered.
type Provider struct {
	resolver *net.Resolver
	rbls     []string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewProvider creates a new local facts provider.
func NewProvider(rbls []string, timeout time.Duration, logger *zap.Logger) *Provider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{
		resolver: net.DefaultResolver,
		rbls:     rbls,
		timeout:  timeout,
		logger:   logger,
	}
}

// FetchDomainFacts gathers domain facts for the address. Transport-level
// failures never occur here; an unparseable address is reported through
// the facts' Error field like the remote service does.
func (p *Provider) FetchDomainFacts(ctx context.Context, rawURL string) (*core.DomainFacts, error) {
	trimmed := strings.TrimSpace(rawURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return &core.DomainFacts{Error: "could not parse address"}, nil
	}

	host := strings.ToLower(u.Hostname())
	facts := &core.DomainFacts{
		DomainName:  host,
		Scheme:      u.Scheme,
		Path:        u.Path,
		Query:       u.RawQuery,
		IsIPAddress: net.ParseIP(host) != nil,
	}

	facts.DNSRecords = p.lookupRecords(ctx, host)

	if u.Scheme == "https" || !facts.IsIPAddress {
		facts.SSLInfo = p.fetchCertificate(host)
	}

	if !facts.IsIPAddress {
		p.fillRegistration(facts, host)
		facts.BlacklistChecks = p.checkBlacklists(ctx, host)
	}

	return facts, nil
}

// lookupRecords builds the DNS record map. A lookup that answers "no
// such record" contributes an empty list; one that fails outright leaves
// its key absent so scoring treats it as not applicable.
func (p *Provider) lookupRecords(ctx context.Context, host string) map[string][]string {
	records := make(map[string][]string)

	ips, err := p.resolver.LookupIP(ctx, "ip4", host)
	if values, ok := ipStrings(ips, err); ok {
		records["A"] = values
	}
	ips, err = p.resolver.LookupIP(ctx, "ip6", host)
	if values, ok := ipStrings(ips, err); ok {
		records["AAAA"] = values
	}

	if mxs, err := p.resolver.LookupMX(ctx, host); err == nil || isNotFound(err) {
		values := make([]string, 0, len(mxs))
		for _, mx := range mxs {
			values = append(values, strings.TrimSuffix(mx.Host, "."))
		}
		records["MX"] = values
	}

	if nss, err := p.resolver.LookupNS(ctx, host); err == nil || isNotFound(err) {
		values := make([]string, 0, len(nss))
		for _, ns := range nss {
			values = append(values, strings.TrimSuffix(ns.Host, "."))
		}
		records["NS"] = values
	}

	if txts, err := p.resolver.LookupTXT(ctx, host); err == nil || isNotFound(err) {
		records["TXT"] = txts
	}

	if len(records) == 0 {
		return nil
	}
	return records
}

// fetchCertificate dials port 443 and reports the leaf certificate.
// Verification is skipped on purpose: an invalid certificate is a signal
// to report, not a reason to fail the probe.
func (p *Provider) fetchCertificate(host string) *core.SSLInfo {
	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", host+":443", &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: true,
	})
	if err != nil {
		p.logger.Debug("TLS probe failed", zap.String("host", host), zap.Error(err))
		return nil
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil
	}
	cert := certs[0]
	notBefore := cert.NotBefore
	notAfter := cert.NotAfter
	return &core.SSLInfo{
		Issuer:       nameToMap(cert.Issuer),
		Subject:      nameToMap(cert.Subject),
		Version:      cert.Version,
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    &notBefore,
		NotAfter:     &notAfter,
	}
}

// fillRegistration queries WHOIS and derives the registration details
// and the domain age. Subdomains fall back to their parent domain, since
// registrars only answer for registrable names.
func (p *Provider) fillRegistration(facts *core.DomainFacts, host string) {
	parsed, ok := p.queryWhois(host, 0)
	if !ok {
		return
	}

	info := &core.WhoisInfo{}
	if parsed.Registrar != nil {
		info.Registrar = parsed.Registrar.Name
	}
	if parsed.Domain != nil {
		info.NameServers = parsed.Domain.NameServers
		info.Status = parsed.Domain.Status
		info.CreationDate = whoisDate(parsed.Domain.CreatedDateInTime, parsed.Domain.CreatedDate)
		info.ExpirationDate = whoisDate(parsed.Domain.ExpirationDateInTime, parsed.Domain.ExpirationDate)
		info.UpdatedDate = whoisDate(parsed.Domain.UpdatedDateInTime, parsed.Domain.UpdatedDate)
	}
	facts.WhoisInfo = info

	if info.CreationDate != nil {
		age := int(time.Since(*info.CreationDate).Hours() / 24)
		facts.DomainAgeDays = &age
	}
}

const maxWhoisParentHops = 3

func (p *Provider) queryWhois(host string, depth int) (whoisparser.WhoisInfo, bool) {
	raw, err := whois.Whois(host)
	if err != nil {
		p.logger.Debug("WHOIS query failed", zap.String("host", host), zap.Error(err))
		return whoisparser.WhoisInfo{}, false
	}
	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		// Registrars do not answer for subdomains; retry on the parent.
		parts := strings.Split(host, ".")
		if len(parts) > 2 && depth < maxWhoisParentHops {
			return p.queryWhois(strings.Join(parts[1:], "."), depth+1)
		}
		return whoisparser.WhoisInfo{}, false
	}
	return parsed, true
}

// checkBlacklists queries each configured domain RBL. A listed domain
// resolves inside the RBL zone; NXDOMAIN means clean.
func (p *Provider) checkBlacklists(ctx context.Context, host string) []core.BlacklistCheck {
	checks := make([]core.BlacklistCheck, 0, len(p.rbls))
	for _, rbl := range p.rbls {
		check := core.BlacklistCheck{Source: rbl}
		addrs, err := p.resolver.LookupHost(ctx, host+"."+rbl)
		switch {
		case err == nil && len(addrs) > 0:
			check.IsListed = true
			check.Details = strings.Join(addrs, ", ")
		case err != nil && !isNotFound(err):
			p.logger.Debug("RBL query failed",
				zap.String("host", host), zap.String("rbl", rbl), zap.Error(err))
			check.Details = "lookup failed"
		}
		checks = append(checks, check)
	}
	return checks
}

func whoisDate(parsed *time.Time, raw string) *time.Time {
	if parsed != nil {
		return parsed
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func nameToMap(name pkix.Name) map[string]string {
	m := make(map[string]string)
	if name.CommonName != "" {
		m["CN"] = name.CommonName
	}
	if len(name.Organization) > 0 {
		m["O"] = strings.Join(name.Organization, ", ")
	}
	if len(name.Country) > 0 {
		m["C"] = strings.Join(name.Country, ", ")
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func ipStrings(ips []net.IP, err error) ([]string, bool) {
	if err != nil && !isNotFound(err) {
		return nil, false
	}
	values := make([]string, 0, len(ips))
	for _, ip := range ips {
		values = append(values, ip.String())
	}
	return values, true
}

func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}
