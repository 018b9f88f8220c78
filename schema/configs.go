package schema

import "fmt"

// InputPaths holds the nine performance export paths, one per window and bucket.
type InputPaths struct {
	L3MService    string `mapstructure:"l3m-service" json:"l3m_service"`
	L3MLocation   string `mapstructure:"l3m-location" json:"l3m_location"`
	L3MSupporting string `mapstructure:"l3m-supporting" json:"l3m_supporting"`
	MoMService    string `mapstructure:"mom-service" json:"mom_service"`
	MoMLocation   string `mapstructure:"mom-location" json:"mom_location"`
	MoMSupporting string `mapstructure:"mom-supporting" json:"mom_supporting"`
	YoYService    string `mapstructure:"yoy-service" json:"yoy_service"`
	YoYLocation   string `mapstructure:"yoy-location" json:"yoy_location"`
	YoYSupporting string `mapstructure:"yoy-supporting" json:"yoy_supporting"`
}

// field returns a pointer to the path slot for w and b.
func (p *InputPaths) field(w Window, b Bucket) *string {
	switch w {
	case L3MWindow:
		switch b {
		case ServiceBucket:
			return &p.L3MService
		case LocationBucket:
			return &p.L3MLocation
		case SupportingBucket:
			return &p.L3MSupporting
		}
	case MoMWindow:
		switch b {
		case ServiceBucket:
			return &p.MoMService
		case LocationBucket:
			return &p.MoMLocation
		case SupportingBucket:
			return &p.MoMSupporting
		}
	case YoYWindow:
		switch b {
		case ServiceBucket:
			return &p.YoYService
		case LocationBucket:
			return &p.YoYLocation
		case SupportingBucket:
			return &p.YoYSupporting
		}
	}
	return nil
}

// Path returns the configured path for w and b.
func (p InputPaths) Path(w Window, b Bucket) string {
	if f := p.field(w, b); f != nil {
		return *f
	}
	return ""
}

// Set assigns the path for w and b. Unknown combinations are ignored.
func (p *InputPaths) Set(w Window, b Bucket, path string) {
	if f := p.field(w, b); f != nil {
		*f = path
	}
}

// InputKey is the config key naming the input for w and b, e.g. "mom-location".
func InputKey(w Window, b Bucket) string {
	return fmt.Sprintf("%s-%s", lower(string(w)), lower(string(b)))
}

// DefaultInputFile is the file name used for w and b under an input directory, e.g. "mom_location.csv".
func DefaultInputFile(w Window, b Bucket) string {
	return fmt.Sprintf("%s_%s.csv", lower(string(w)), lower(string(b)))
}

// DefaultMetadataFile is the metadata file name used under an input directory.
const DefaultMetadataFile = "metadata.csv"

// EngineOptions tunes how metrics are rendered. Zero values are filled from the struct tags.
type EngineOptions struct {
	// InfinityToken is written as the relative delta when prior is 0 and current is positive.
	InfinityToken string `default:"+∞" mapstructure:"infinity-token" json:"infinity_token"`
	// Precision is the number of decimals in relative deltas.
	Precision int `default:"1" mapstructure:"precision" json:"precision"`
	// NoteSeparator joins entries in the Data Coverage Notes column.
	NoteSeparator string `default:"; " mapstructure:"note-separator" json:"note_separator"`
}

// RunConfig is the configuration record for one engine run.
type RunConfig struct {
	InputPaths      InputPaths    `json:"input_paths"`
	MetadataPath    string        `json:"metadata_path"`
	CustomRulesText string        `json:"custom_rules_text"`
	OutputRoot      string        `json:"output_root"`
	Options         EngineOptions `json:"options"`
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID             string   `json:"run_id"`
	OutputDir         string   `json:"output_dir"`
	AnalysisCSV       string   `json:"analysis_csv"`
	QACSV             string   `json:"qa_csv"`
	QASummaryTXT      string   `json:"qa_summary_txt"`
	PromptTXT         string   `json:"prompt_txt"`
	PromptText        string   `json:"prompt_text"` // rendered prompt.txt content
	ValidationBlocked bool     `json:"validation_blocked"`
	QAIssueCount      int      `json:"qa_issue_count"`
	QAErrorCount      int      `json:"qa_error_count"`
	RowCount          int      `json:"row_count"`
	BucketOrder       []string `json:"bucket_order"`
}

// BucketOrderNames returns the bucket order as plain strings.
func BucketOrderNames() []string {
	names := make([]string, len(AllBuckets))
	for i, b := range AllBuckets {
		names[i] = string(b)
	}
	return names
}
