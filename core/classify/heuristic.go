package classify

import (
	"fmt"
	"strings"

	"github.com/huangsam/seobench/schema"
)

var locationPrefixes = []string{"/locations/", "/location/", "/service-area/", "/service-areas/"}

var servicePrefixes = []string{"/services/", "/service/", "/practice-areas/", "/practice-area/"}

var locationH1Terms = []string{"office", "location", "service area"}

// serviceNouns are title terms typical of service pages.
var serviceNouns = []string{
	"services", "service", "repair", "installation", "replacement", "maintenance", "cleaning",
	"plumbing", "roofing", "hvac", "remodeling", "attorney", "lawyer", "law firm", "treatment",
	"therapy", "surgery", "dentist", "consulting", "inspection", "removal",
}

// usStates holds state names (as URL slugs) and postal codes.
var usStates = func() map[string]bool {
	names := []string{
		"alabama", "alaska", "arizona", "arkansas", "california", "colorado", "connecticut", "delaware",
		"florida", "georgia", "hawaii", "idaho", "illinois", "indiana", "iowa", "kansas", "kentucky",
		"louisiana", "maine", "maryland", "massachusetts", "michigan", "minnesota", "mississippi",
		"missouri", "montana", "nebraska", "nevada", "new-hampshire", "new-jersey", "new-mexico",
		"new-york", "north-carolina", "north-dakota", "ohio", "oklahoma", "oregon", "pennsylvania",
		"rhode-island", "south-carolina", "south-dakota", "tennessee", "texas", "utah", "vermont",
		"virginia", "washington", "west-virginia", "wisconsin", "wyoming", "district-of-columbia",
	}
	codes := []string{
		"al", "ak", "az", "ar", "ca", "co", "ct", "de", "fl", "ga", "hi", "id", "il", "in", "ia", "ks",
		"ky", "la", "me", "md", "ma", "mi", "mn", "ms", "mo", "mt", "ne", "nv", "nh", "nj", "nm", "ny",
		"nc", "nd", "oh", "ok", "or", "pa", "ri", "sc", "sd", "tn", "tx", "ut", "vt", "va", "wa", "wv",
		"wi", "wy", "dc",
	}
	states := make(map[string]bool, len(names)+len(codes))
	for _, s := range append(names, codes...) {
		states[s] = true
	}
	return states
}()

// Heuristic infers a bucket from URL shape and metadata, returning the bucket and a short reason.
func Heuristic(url string, m schema.Metadata) (schema.Bucket, string) {
	path := URLPath(url)
	for _, prefix := range locationPrefixes {
		if strings.HasPrefix(path, prefix) {
			return schema.LocationBucket, fmt.Sprintf("url path %s", prefix)
		}
	}
	if isStateCityPath(path) {
		return schema.LocationBucket, "url path /<state>/<city>/"
	}
	h1 := strings.ToLower(m.H1)
	for _, term := range locationH1Terms {
		if strings.Contains(h1, term) {
			return schema.LocationBucket, fmt.Sprintf("h1 term %q", term)
		}
	}

	for _, prefix := range servicePrefixes {
		if strings.HasPrefix(path, prefix) {
			return schema.ServiceBucket, fmt.Sprintf("url path %s", prefix)
		}
	}
	title := strings.ToLower(m.Title)
	for _, noun := range serviceNouns {
		if strings.Contains(title, noun) {
			return schema.ServiceBucket, fmt.Sprintf("title term %q", noun)
		}
	}

	if b, ok := schema.ParseBucket(m.Type); ok {
		return b, fmt.Sprintf("metadata type %q", m.Type)
	}
	return schema.SupportingBucket, "default"
}

// URLPath returns the path of a canonical URL without scheme, host or query.
func URLPath(url string) string {
	rest := url
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[j:]
		} else {
			rest = "/"
		}
	} else if !strings.HasPrefix(rest, "/") {
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[j:]
		} else {
			rest = "/"
		}
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// isStateCityPath matches exactly two segments where the first is a US state.
func isStateCityPath(path string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	return len(segments) == 2 && usStates[segments[0]] && segments[1] != ""
}
