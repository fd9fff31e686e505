package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules collects the tunable thresholds and keyword markers the segmentation
// heuristics depend on. Defaults match the known corpus; a YAML file can
// override any field so retuning does not require a rebuild.
type Rules struct {
	// Classification
	SparsePageRatio float64 `yaml:"sparse_page_ratio"` // fraction of empty pages that makes a document sparse
	MinPageChars    int     `yaml:"min_page_chars"`    // below this a page counts as empty
	ClassifyFloor   float64 `yaml:"classify_floor"`    // minimum confidence before falling back to unknown

	// Boundary detection
	MentiWindow      int     `yaml:"menti_window"`      // lines after a header in which corroboration must appear
	BareConfidence   float64 `yaml:"bare_confidence"`   // cap for uncorroborated numeric headers
	HeaderConfidence float64 `yaml:"header_confidence"` // corroborated standard/menti boundary
	WeakConfidence   float64 `yaml:"weak_confidence"`   // candidate kept without corroboration

	// Merge separation
	MergeMinScore float64 `yaml:"merge_min_score"` // discontinuity score a split page must reach
	MergeMinPages int     `yaml:"merge_min_pages"` // minimum pages on each side of a split

	// Keyword markers (Korean study-material defaults)
	QuestionAnchor      string   `yaml:"question_anchor"`       // standalone unit marker line
	ListHeadKeywords    []string `yaml:"list_head_keywords"`    // question-list block header pair
	IntentKeywords      []string `yaml:"intent_keywords"`       // explanation markers (inline/standard corroboration)
	DomainKeywords      []string `yaml:"domain_keywords"`       // menti corroboration: domain tag
	DifficultyKeyword   string   `yaml:"difficulty_keyword"`    // menti corroboration: difficulty tag
	SecondCoverKeywords []string `yaml:"second_cover_keywords"` // cover signature of the second merged source
	SecondCoverContext  []string `yaml:"second_cover_context"`  // any of these must accompany the cover keyword
}

// DefaultRules returns the thresholds validated against the known corpus.
func DefaultRules() Rules {
	return Rules{
		SparsePageRatio:  0.9,
		MinPageChars:     30,
		ClassifyFloor:    0.5,
		MentiWindow:      12,
		BareConfidence:   0.6,
		HeaderConfidence: 0.9,
		WeakConfidence:   0.55,
		MergeMinScore:    6,
		MergeMinPages:    3,

		QuestionAnchor:      "문제",
		ListHeadKeywords:    []string{"문제중", "선택"},
		IntentKeywords:      []string{"출제의도", "작성방안"},
		DomainKeywords:      []string{"출제영역", "도메인"},
		DifficultyKeyword:   "난이도",
		SecondCoverKeywords: []string{"아이리포"},
		SecondCoverContext:  []string{"대비", "기술사회"},
	}
}

// LoadRules overlays rules from a YAML file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parse rules file: %w", err)
	}
	return r, nil
}
