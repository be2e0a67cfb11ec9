package classifier

// The denylists below are flat data tables on purpose: they grow over time
// and must never leak into control flow. Entries are matched as lower-case
// substrings of the normalized host.

// excludedDomains are general platforms, social networks and search engines.
// None of their listings are standalone businesses.
var excludedDomains = []string{
	"google.com",
	"bing.com",
	"duckduckgo.com",
	"yahoo.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"youtube.com",
	"tiktok.com",
	"pinterest.com",
	"reddit.com",
	"wikipedia.org",
	"amazon.com",
	"ebay.com",
	"etsy.com",
	"craigslist.org",
}

// aggregatorDomains are directories, review sites, marketplaces and
// map/navigation services that list other businesses.
var aggregatorDomains = []string{
	"yelp.com",
	"tripadvisor.com",
	"yellowpages.com",
	"superpages.com",
	"whitepages.com",
	"angi.com",
	"angieslist.com",
	"thumbtack.com",
	"houzz.com",
	"homeadvisor.com",
	"bbb.org",
	"foursquare.com",
	"zomato.com",
	"opentable.com",
	"doordash.com",
	"grubhub.com",
	"ubereats.com",
	"seamless.com",
	"mapquest.com",
	"waze.com",
	"zillow.com",
	"trulia.com",
	"realtor.com",
	"apartments.com",
	"glassdoor.com",
	"indeed.com",
	"groupon.com",
	"nextdoor.com",
	"manta.com",
	"citysearch.com",
	"merchantcircle.com",
	"chamberofcommerce.com",
}

// aggregatorNameFragments catch directory-style listings regardless of the
// domain they surface under.
var aggregatorNameFragments = []string{
	"near me",
	"directory",
	"yellow pages",
	"top 10",
	"top ten",
	"best of",
	"listings",
	"find a local",
	"reviews of",
}
