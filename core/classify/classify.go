// Package classify infers a bucket for every URL and reconciles it with the declared bucket.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/seobench/schema"
)

// Result holds the two bucket assignments per canonical URL. Declared is never changed by
// classification; Inferred is what the rules and heuristics concluded.
type Result struct {
	Declared    map[string]schema.Bucket
	Inferred    map[string]schema.Bucket
	MatchedRule map[string]string
}

// URLs returns every classified URL in output order: bucket order, then ascending URL.
func (r Result) URLs() []string {
	urls := make([]string, 0, len(r.Declared))
	for url := range r.Declared {
		urls = append(urls, url)
	}
	sort.Slice(urls, func(i, j int) bool {
		bi, bj := r.Declared[urls[i]].Index(), r.Declared[urls[j]].Index()
		if bi != bj {
			return bi < bj
		}
		return urls[i] < urls[j]
	})
	return urls
}

// DeclaredBuckets assigns each URL the bucket of the files it was loaded from. A URL found in
// more than one bucket's files keeps the earliest bucket in bucket order and raises a warning.
func DeclaredBuckets(ds schema.Dataset) (map[string]schema.Bucket, []schema.QAIssue) {
	declared := make(map[string]schema.Bucket)
	var issues []schema.QAIssue
	for _, b := range schema.AllBuckets {
		for _, w := range schema.AllWindows {
			table := ds.Table(w, b)
			if table == nil {
				continue
			}
			for _, url := range sortedURLs(table) {
				first, seen := declared[url]
				if !seen {
					declared[url] = b
					continue
				}
				if first == b {
					continue
				}
				issues = append(issues, schema.QAIssue{
					URL:       url,
					IssueType: schema.DeclaredBucketConflictIssue,
					Severity:  schema.WarningSeverity,
					Detail:    fmt.Sprintf("also listed in %s %s export %s; kept as %s", w, b, table.Source, first),
					Bucket:    first,
					Window:    w,
					Source:    table.Source,
				})
			}
		}
	}
	return declared, issues
}

func sortedURLs(table *schema.Table) []string {
	urls := make([]string, 0, len(table.Rows))
	for url := range table.Rows {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Classify infers a bucket for every declared URL. Custom rules are tried in order and the first
// match wins; heuristics run only when no rule names a bucket.
func Classify(declared map[string]schema.Bucket, meta map[string]schema.Metadata, rules []schema.Rule) (Result, []schema.QAIssue) {
	res := Result{
		Declared:    make(map[string]schema.Bucket, len(declared)),
		Inferred:    make(map[string]schema.Bucket, len(declared)),
		MatchedRule: make(map[string]string),
	}
	var issues []schema.QAIssue

	for _, url := range sortedKeys(declared) {
		bucket := declared[url]
		res.Declared[url] = bucket

		m, ok := meta[url]
		if !ok {
			issues = append(issues, schema.QAIssue{
				URL:       url,
				IssueType: schema.MissingMetadataIssue,
				Severity:  schema.WarningSeverity,
				Detail:    "metadata missing",
				Bucket:    bucket,
			})
			m = schema.Metadata{URL: url}
		}

		inferred, reason := schema.Bucket(""), ""
		if rule, matched := FirstMatch(rules, url, m); matched {
			res.MatchedRule[url] = rule.Name
			if b, named := schema.ParseBucket(rule.Name); named {
				inferred, reason = b, fmt.Sprintf("rule %q", rule.Name)
			} else {
				issues = append(issues, schema.QAIssue{
					URL:       url,
					IssueType: schema.UnknownRuleMatchIssue,
					Severity:  schema.WarningSeverity,
					Detail:    fmt.Sprintf("rule %q matched but names no bucket; heuristics used", rule.Name),
					Bucket:    bucket,
				})
			}
		}
		if inferred == "" {
			inferred, reason = Heuristic(url, m)
		}
		res.Inferred[url] = inferred

		if inferred != bucket {
			issues = append(issues, schema.QAIssue{
				URL:       url,
				IssueType: schema.TypeConflictIssue,
				Severity:  schema.WarningSeverity,
				Detail:    fmt.Sprintf("declared %s, inferred %s from %s", bucket, inferred, reason),
				Bucket:    bucket,
			})
		}
	}
	return res, issues
}

func sortedKeys(m map[string]schema.Bucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FirstMatch returns the first rule that matches the URL and its metadata.
func FirstMatch(rules []schema.Rule, url string, m schema.Metadata) (schema.Rule, bool) {
	for _, rule := range rules {
		if Matches(rule, url, m) {
			return rule, true
		}
	}
	return schema.Rule{}, false
}

// Matches reports whether every non-empty list of the rule hits its field and no exclude
// substring appears in the URL, title, meta description or H1. Comparison ignores case.
func Matches(rule schema.Rule, url string, m schema.Metadata) bool {
	fields := map[string]string{
		"url":   strings.ToLower(url),
		"title": strings.ToLower(m.Title),
		"meta":  strings.ToLower(m.MetaDescription),
		"h1":    strings.ToLower(m.H1),
	}
	checks := []struct {
		field  string
		values []string
	}{
		{"url", rule.URLContains},
		{"title", rule.TitleContains},
		{"meta", rule.MetaContains},
		{"h1", rule.H1Contains},
	}
	for _, check := range checks {
		if len(check.values) > 0 && !containsAny(fields[check.field], check.values) {
			return false
		}
	}
	for _, field := range []string{"url", "title", "meta", "h1"} {
		if containsAny(fields[field], rule.Exclude) {
			return false
		}
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
