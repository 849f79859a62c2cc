package core

import (
	"context"
)

// DomainFactsProvider fetches the domain-level facts for an address.
// A non-nil error means the request itself failed (transport or HTTP
// status); a provider may instead report a semantic failure through the
// Error field of the returned facts.
type DomainFactsProvider interface {
	// FetchDomainFacts gathers WHOIS, DNS, certificate and blacklist
	// facts for the given address.
	FetchDomainFacts(ctx context.Context, rawURL string) (*DomainFacts, error)
}

// TextClassifier produces a phishing verdict for a piece of text.
type TextClassifier interface {
	// ClassifyText judges whether the text looks like phishing.
	ClassifyText(ctx context.Context, text string) (*TextVerdict, error)
}

// CacheRepository stores the latest composite result per host identity.
// Records are replaced wholesale, never mutated in place, and staleness
// is detected lazily by readers.
type CacheRepository interface {
	// Get retrieves the stored result for a host identity.
	Get(ctx context.Context, identity string) (*CompositeResult, error)

	// Set stores a result, replacing any previous record for the identity.
	Set(ctx context.Context, identity string, result *CompositeResult) error

	// Delete removes the record for a host identity.
	Delete(ctx context.Context, identity string) error

	// Cleanup removes expired records.
	Cleanup(ctx context.Context) error
}

// Publisher announces finished analyses on a per-identity topic.
// Delivery is at most once and best effort: subscribers that are not
// listening at publish time simply miss the update.
type Publisher interface {
	Publish(identity string, result *CompositeResult)
}

// TrustChecker reports whether a host is on the operator's trusted list.
type TrustChecker interface {
	IsTrusted(host string) bool
}
