package requisite

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// KeywordRule maps one category to its trigger phrases. Rules are checked in
// order and the first category whose phrase appears in the fragment wins.
type KeywordRule struct {
	Category Category
	Phrases  []string
}

// DefaultKeywordRules is the compiled-in trigger table for classifying
// non-course requirement fragments.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{CategoryStanding, []string{
			"senior standing", "junior standing", "sophomore standing",
			"freshman standing", "standing",
		}},
		{CategoryApproval, []string{
			"instructor approval", "consent of instructor", "approval",
			"permission", "instructor consent",
		}},
		{CategoryExemption, []string{"exemption"}},
		{CategoryPreparation, []string{"preparation course", "college level"}},
	}
}

// keywordFile is the TOML shape for overriding the trigger table:
//
//	[keywords]
//	standing = ["senior standing", "standing"]
//	approval = ["approval", "permission"]
type keywordFile struct {
	Keywords map[string][]string `toml:"keywords"`
}

// validCategories lists the categories a keyword file may define triggers
// for. "other" is the fallback and carries no triggers.
var validCategories = []Category{
	CategoryStanding, CategoryApproval, CategoryExemption, CategoryPreparation,
}

// LoadKeywordRules reads a TOML keyword override file. Categories omitted
// from the file keep their compiled-in triggers; category order is fixed
// regardless of file order so classification stays deterministic.
func LoadKeywordRules(path string) ([]KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("requisite: read keyword file %s: %w", path, err)
	}

	var doc keywordFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("requisite: parse keyword file %s: %w", path, err)
	}

	for name := range doc.Keywords {
		known := false
		for _, cat := range validCategories {
			if name == string(cat) {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("requisite: keyword file %s: unknown category %q", path, name)
		}
	}

	rules := DefaultKeywordRules()
	for i, rule := range rules {
		if phrases, ok := doc.Keywords[string(rule.Category)]; ok {
			rules[i].Phrases = phrases
		}
	}
	return rules, nil
}
