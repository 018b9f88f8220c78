// Package rules parses and formats the custom classification rule DSL.
//
// One rule per line:
//
//	Blog: url_contains=/blog/,/insights/; title_contains=blog,guide; exclude=/tag/
//
// Blank lines and lines starting with '#' are ignored.
package rules

import (
	"fmt"
	"strings"

	"github.com/huangsam/seobench/schema"
)

// Clause keys in grammar order.
const (
	URLContainsKey   = "url_contains"
	TitleContainsKey = "title_contains"
	MetaContainsKey  = "meta_contains"
	H1ContainsKey    = "h1_contains"
	ExcludeKey       = "exclude"
)

// Keys lists the clause keys in the order Format writes them.
var Keys = []string{URLContainsKey, TitleContainsKey, MetaContainsKey, H1ContainsKey, ExcludeKey}

// ParseError locates a malformed rule. Line and Column are 1-based.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rules: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Parse reads rule text. Empty text yields an empty list.
func Parse(text string) ([]schema.Rule, error) {
	var rules []schema.Rule
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		rule, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseLine(line string, lineNo int) (schema.Rule, error) {
	fail := func(offset int, format string, args ...any) (schema.Rule, error) {
		return schema.Rule{}, &ParseError{Line: lineNo, Column: offset + 1, Msg: fmt.Sprintf(format, args...)}
	}

	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return fail(len(strings.TrimRight(line, " \t")), "expected ':' after rule name")
	}
	rule := schema.Rule{Name: strings.TrimSpace(line[:colon])}
	if rule.Name == "" {
		return fail(leading(line, 0), "empty rule name")
	}

	clauses := splitOffsets(line, colon+1, ';')
	for n, clause := range clauses {
		text := clause.text
		if strings.TrimSpace(text) == "" {
			// A single trailing ';' is tolerated.
			if n == len(clauses)-1 && n > 0 {
				break
			}
			return fail(clause.offset, "empty clause")
		}
		eq := strings.IndexByte(text, '=')
		if eq < 0 {
			return fail(leading(line, clause.offset), "expected '=' in clause %q", strings.TrimSpace(text))
		}
		key := strings.ToLower(strings.TrimSpace(text[:eq]))
		target := rule.Field(key)
		if target == nil {
			return fail(leading(line, clause.offset), "unknown key %q", strings.TrimSpace(text[:eq]))
		}
		for _, value := range splitOffsets(line[:clause.offset+len(text)], clause.offset+eq+1, ',') {
			v := strings.TrimSpace(value.text)
			if v == "" {
				return fail(value.offset, "empty value for %s", key)
			}
			*target = append(*target, v)
		}
	}
	return rule, nil
}

// span is a piece of a line and its byte offset within the line.
type span struct {
	text   string
	offset int
}

// splitOffsets splits line[start:] on sep, keeping offsets relative to line.
func splitOffsets(line string, start int, sep byte) []span {
	var out []span
	begin := start
	for i := start; i < len(line); i++ {
		if line[i] == sep {
			out = append(out, span{line[begin:i], begin})
			begin = i + 1
		}
	}
	return append(out, span{line[begin:], begin})
}

// leading returns the offset of the first non-blank byte at or after offset.
func leading(line string, offset int) int {
	for offset < len(line) && (line[offset] == ' ' || line[offset] == '\t') {
		offset++
	}
	return offset
}

// Format writes rules back into the DSL, one per line, keys in grammar order and empty lists omitted.
// Parse(Format(r)) returns r for any r produced by Parse.
func Format(rules []schema.Rule) string {
	lines := make([]string, 0, len(rules))
	for _, r := range rules {
		var clauses []string
		for _, key := range Keys {
			values := r.Values(key)
			if len(values) == 0 {
				continue
			}
			clauses = append(clauses, key+"="+strings.Join(values, ","))
		}
		lines = append(lines, r.Name+": "+strings.Join(clauses, "; "))
	}
	return strings.Join(lines, "\n")
}
