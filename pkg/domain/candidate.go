package domain

// DiscoveryCandidate is a raw, unvalidated business record produced by the
// external business-search source. Candidates are ephemeral: they are
// classified, normalized and deduplicated into leads, never persisted directly.
type DiscoveryCandidate struct {
	// Domain is the business domain as reported by the source. It may carry a
	// scheme, path or www prefix and must be normalized before use.
	Domain string `json:"domain"`
	// DisplayName is the business name as listed by the source.
	DisplayName string `json:"displayName"`

	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`

	// WebsiteURL is the website found for the business, if any.
	WebsiteURL string `json:"websiteUrl,omitempty"`
	// WebsiteScore is the source's quality assessment of the website (0-100).
	WebsiteScore *int `json:"websiteScore,omitempty"`
	// WebsiteIssues lists problems the source detected on the website.
	WebsiteIssues []string `json:"websiteIssues,omitempty"`
	// SocialMedia lists social profiles found for the business.
	SocialMedia []string `json:"socialMedia,omitempty"`

	// SourceQuery is the search query that surfaced this candidate.
	SourceQuery string `json:"sourceQuery,omitempty"`
}
