package discovery

import (
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"regexp"
	"strings"
)

// NormalizeDomain returns the canonical, comparable form of a domain value:
// lower-cased, with scheme, credentials, port, path and a leading www.
// stripped. An empty string means the candidate has no usable domain.
func NormalizeDomain(raw string) string {
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

// NormalizeCompanyName lower-cases a display name and collapses interior
// whitespace so it can serve as a deduplication key.
func NormalizeCompanyName(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// websitePlaceholders are values producers emit when no website was found.
var websitePlaceholders = map[string]struct{}{
	"":     {},
	"none": {},
	"n/a":  {},
	"null": {},
	"-":    {},
}

// normalizeWebsite collapses missing or placeholder website values to the
// WebsiteNone sentinel.
func normalizeWebsite(raw string) string {
	v := strings.TrimSpace(raw)
	if _, ok := websitePlaceholders[strings.ToLower(v)]; ok {
		return domain.WebsiteNone
	}

	return v
}

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// normalizeEmail lower-cases and validates the email shape. Malformed values
// are dropped, not rejected: a lead without contact info is still valid.
func normalizeEmail(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !emailShape.MatchString(v) {
		return ""
	}

	return v
}

// normalizePhone keeps a phone value only when it carries at least seven
// digits; formatting is preserved.
func normalizePhone(raw string) string {
	v := strings.TrimSpace(raw)
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 {
		return ""
	}

	return v
}

// NormalizeCandidate turns an admissible candidate into a Lead ready for
// insertion. The deduplication key is the normalized domain when one exists,
// otherwise the normalized company name. A candidate with neither is
// malformed and rejected.
func NormalizeCandidate(owner domain.UserID, c domain.DiscoveryCandidate) (domain.Lead, error) {
	name := strings.TrimSpace(c.DisplayName)
	dom := NormalizeDomain(c.Domain)

	key := dom
	if key == "" {
		key = NormalizeCompanyName(name)
	}
	if key == "" {
		return domain.Lead{}, serrors.With(serrors.ErrBadRequest, "candidate has neither domain nor display name")
	}
	if name == "" {
		name = dom
	}

	var score *int
	if c.WebsiteScore != nil && *c.WebsiteScore >= 0 && *c.WebsiteScore <= 100 {
		v := *c.WebsiteScore
		score = &v
	}

	return domain.Lead{
		OwnerUserID:   owner,
		CompanyName:   name,
		CompanyKey:    key,
		Domain:        dom,
		ContactName:   strings.TrimSpace(c.ContactName),
		ContactEmail:  normalizeEmail(c.ContactEmail),
		ContactPhone:  normalizePhone(c.ContactPhone),
		WebsiteURL:    normalizeWebsite(c.WebsiteURL),
		WebsiteScore:  score,
		WebsiteIssues: c.WebsiteIssues,
		SocialMedia:   c.SocialMedia,
		Stage:         domain.StageNew,
	}, nil
}
