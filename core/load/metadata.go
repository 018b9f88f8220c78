package load

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
)

type metadataField int

const (
	metaURL metadataField = iota
	metaType
	metaTitle
	metaDescription
	metaH1
)

// metadataAliases maps normalized metadata headers to fields. Crawler exports number repeated
// fields ("Title 1", "H1-1"); only the first occurrence is used.
var metadataAliases = map[string]metadataField{
	"url":                metaURL,
	"address":            metaURL,
	"page":               metaURL,
	"type":               metaType,
	"page type":          metaType,
	"title":              metaTitle,
	"title 1":            metaTitle,
	"meta description":   metaDescription,
	"meta description 1": metaDescription,
	"description":        metaDescription,
	"h1":                 metaH1,
	"h1 1":               metaH1,
}

// LoadMetadata reads the metadata export keyed by canonical URL.
func LoadMetadata(path string) (map[string]schema.Metadata, []schema.QAIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &contract.ConfigError{Input: "metadata", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	meta, issues, err := ReadMetadata(f, path)
	if err != nil {
		return nil, nil, &contract.ConfigError{Input: "metadata", Path: path, Err: err}
	}
	return meta, issues, nil
}

// ReadMetadata parses a metadata CSV from r. The first row for a canonical URL wins.
// A file without a URL column yields a warning and no rows, so every URL later reports missing metadata.
func ReadMetadata(r io.Reader, source string) (map[string]schema.Metadata, []schema.QAIssue, error) {
	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[metadataField]int)
	for i, raw := range header {
		field, ok := metadataAliases[NormalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, seen := index[field]; !seen {
			index[field] = i
		}
	}

	meta := make(map[string]schema.Metadata)
	urlIdx, ok := index[metaURL]
	if !ok {
		return meta, []schema.QAIssue{{
			IssueType: schema.MissingColumnIssue,
			Severity:  schema.WarningSeverity,
			Detail:    fmt.Sprintf("metadata file %s has no URL column", source),
			Source:    source,
			Column:    schema.URLColumn,
		}}, nil
	}

	get := func(record []string, field metadataField) string {
		idx, ok := index[field]
		if !ok {
			return ""
		}
		return cell(record, idx)
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row: %w", err)
		}
		url := CanonicalURL(cell(record, urlIdx))
		if url == "" {
			continue
		}
		if _, seen := meta[url]; seen {
			continue
		}
		meta[url] = schema.Metadata{
			URL:             url,
			Type:            get(record, metaType),
			Title:           get(record, metaTitle),
			MetaDescription: get(record, metaDescription),
			H1:              get(record, metaH1),
		}
	}
	return meta, nil, nil
}
