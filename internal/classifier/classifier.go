// Package classifier decides whether a raw discovery candidate points at a
// genuine standalone business or at directory/aggregator/platform noise.
// Classification is pure and deterministic: a table lookup over static
// denylists, no I/O.
package classifier

import "strings"

// Verdict is the classification result for a candidate.
type Verdict string

const (
	// VerdictAdmissible means the candidate may proceed to normalization.
	VerdictAdmissible Verdict = "ADMISSIBLE"
	// VerdictAggregator means the candidate is a directory/review/marketplace
	// listing rather than a standalone business.
	VerdictAggregator Verdict = "AGGREGATOR"
	// VerdictExcluded means the candidate is a general platform, social
	// network, search engine or government site.
	VerdictExcluded Verdict = "EXCLUDED"
)

// Admissible reports whether the verdict allows the candidate through.
func (v Verdict) Admissible() bool { return v == VerdictAdmissible }

// normalizeHost reduces a raw domain value to a lower-case bare host for
// matching: scheme, credentials, port, path and a leading www. are stripped.
func normalizeHost(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))

	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.Index(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")

	return strings.Trim(host, ".")
}

// Classify returns the verdict for a candidate's domain and display name.
//
// Domain matching is case-insensitive substring containment against the
// normalized host. The display name is additionally checked against
// directory-style name fragments because aggregator listings can surface
// under arbitrary subdomains.
func Classify(domain, displayName string) Verdict {
	host := normalizeHost(domain)

	if host != "" {
		if strings.HasSuffix(host, ".gov") {
			return VerdictExcluded
		}
		for _, d := range excludedDomains {
			if strings.Contains(host, d) {
				return VerdictExcluded
			}
		}
		for _, d := range aggregatorDomains {
			if strings.Contains(host, d) {
				return VerdictAggregator
			}
		}
	}

	name := strings.ToLower(displayName)
	for _, frag := range aggregatorNameFragments {
		if strings.Contains(name, frag) {
			return VerdictAggregator
		}
	}

	return VerdictAdmissible
}
