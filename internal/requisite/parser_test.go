package requisite

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse_Expressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   Node
		coreqs Node
	}{
		{
			name: "conjunction",
			text: "CSCE 1001 and CSCE 1101",
			want: And{Children: []Node{
				Course{Code: "CSCE1001"},
				Course{Code: "CSCE1101"},
			}},
		},
		{
			name: "disjunction",
			text: "CSCE 1001 or CSCE 1101",
			want: Or{Children: []Node{
				Course{Code: "CSCE1001"},
				Course{Code: "CSCE1101"},
			}},
		},
		{
			name: "group inside conjunction",
			text: "CSCE 1001 and (CSCE 1101 or CSCE 2303)",
			want: And{Children: []Node{
				Course{Code: "CSCE1001"},
				Group{Expression: Or{Children: []Node{
					Course{Code: "CSCE1101"},
					Course{Code: "CSCE2303"},
				}}},
			}},
		},
		{
			name: "conjunction splits before disjunction",
			text: "MACT 2302 or MACT 2322 and CSCE 2303",
			want: And{Children: []Node{
				Or{Children: []Node{
					Course{Code: "MACT2302"},
					Course{Code: "MACT2322"},
				}},
				Course{Code: "CSCE2303"},
			}},
		},
		{
			name: "label stripped",
			text: "Prerequisite: CSCE 1001",
			want: Course{Code: "CSCE1001"},
		},
		{
			name: "whole group expression",
			text: "(CSCE 1001 or CSCE 1101)",
			want: Group{Expression: Or{Children: []Node{
				Course{Code: "CSCE1001"},
				Course{Code: "CSCE1101"},
			}}},
		},
		{
			name: "inline or-concurrent modifier",
			text: "CSCE 1001 and CSCE 2303 (or concurrent)",
			want: And{Children: []Node{
				Course{Code: "CSCE1001"},
				Course{Code: "CSCE2303", IsConcurrent: true},
			}},
		},
		{
			name: "text condition with standing",
			text: "Senior standing",
			want: TextCondition{Condition: "Senior standing", Category: CategoryStanding},
		},
		{
			name: "embedded concurrent clause",
			text: "Senior standing and concurrent with CSCE 4301",
			want: TextCondition{Condition: "Senior standing", Category: CategoryStanding},
			coreqs: Concurrent{
				Course: Course{Code: "CSCE4301"},
			},
		},
		{
			name: "single surviving child collapses",
			text: "CSCE 1001 and ..",
			want: Course{Code: "CSCE1001"},
		},
		{
			name:   "entirely concurrent statement",
			text:   "Concurrent with CSCE 2303",
			coreqs: Concurrent{Course: Course{Code: "CSCE2303"}},
		},
		{
			name: "concurrent with multiple courses and note",
			text: "Concurrent with CSCE 2303 or CSCE 2304 for lab sections.",
			coreqs: Concurrent{
				Course: Or{Children: []Node{
					Course{Code: "CSCE2303"},
					Course{Code: "CSCE2304"},
				}},
				Note: "lab sections",
			},
		},
		{
			name: "unparseable fragment degrades to text condition",
			text: "Completion of the engineering core curriculum",
			want: TextCondition{
				Condition: "Completion of the engineering core curriculum",
				Category:  CategoryOther,
			},
		},
	}

	parser := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ast := parser.Parse(tt.text, "")
			if !reflect.DeepEqual(ast.Prerequisites, tt.want) {
				t.Errorf("prerequisites = %#v, want %#v", ast.Prerequisites, tt.want)
			}
			if !reflect.DeepEqual(ast.Corequisites, tt.coreqs) {
				t.Errorf("corequisites = %#v, want %#v", ast.Corequisites, tt.coreqs)
			}
		})
	}
}

func TestParse_EmptyFields(t *testing.T) {
	t.Parallel()

	ast := New().Parse("", "")
	if ast.Prerequisites != nil || ast.Corequisites != nil {
		t.Errorf("Parse(\"\", \"\") produced trees: %#v", ast)
	}
	if ast.RawText != "" {
		t.Errorf("RawText = %q, want empty", ast.RawText)
	}
}

func TestParse_SeparateConcurrentField(t *testing.T) {
	t.Parallel()
	parser := New()

	t.Run("field only", func(t *testing.T) {
		t.Parallel()
		ast := parser.Parse("", "CSCE 1101")
		want := Concurrent{Course: Course{Code: "CSCE1101"}}
		if !reflect.DeepEqual(ast.Corequisites, want) {
			t.Errorf("corequisites = %#v, want %#v", ast.Corequisites, want)
		}
		if ast.RawText != " | Concurrent: CSCE 1101" {
			t.Errorf("RawText = %q", ast.RawText)
		}
	})

	t.Run("merged with embedded clause", func(t *testing.T) {
		t.Parallel()
		ast := parser.Parse("CSCE 1001 and concurrent with CSCE 2303", "CSCE 2303")
		want := And{Children: []Node{
			Concurrent{Course: Course{Code: "CSCE2303"}},
			Concurrent{Course: Course{Code: "CSCE2303"}},
		}}
		// Duplication across the two sources is permitted, not deduplicated.
		if !reflect.DeepEqual(ast.Corequisites, want) {
			t.Errorf("corequisites = %#v, want %#v", ast.Corequisites, want)
		}
		if !reflect.DeepEqual(ast.Prerequisites, Course{Code: "CSCE1001"}) {
			t.Errorf("prerequisites = %#v", ast.Prerequisites)
		}
	})
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()
	parser := New()

	texts := []string{
		"CSCE 1001 and (CSCE 1101 or CSCE 2303) and MACT 2302",
		"Senior standing and concurrent with CSCE 4301",
		"Concurrent with CSCE 2303 for lab practice.",
		"junk ( unbalanced and CSCE 1001",
	}
	for _, text := range texts {
		first := parser.Parse(text, "PHYS 2211")
		second := parser.Parse(text, "PHYS 2211")
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Parse(%q) not idempotent:\n first = %#v\nsecond = %#v", text, first, second)
		}
	}
}

func TestParseAtomic_Classification(t *testing.T) {
	t.Parallel()
	parser := New()

	tests := []struct {
		name string
		text string
		want Node
	}{
		{"course wins over keywords", "CSCE 1001 with instructor approval", Course{Code: "CSCE1001"}},
		{"approval", "consent of instructor", TextCondition{Condition: "consent of instructor", Category: CategoryApproval}},
		{"exemption", "English exemption", TextCondition{Condition: "English exemption", Category: CategoryExemption}},
		{"preparation", "college level math", TextCondition{Condition: "college level math", Category: CategoryPreparation}},
		{"first category wins", "standing and permission", TextCondition{Condition: "standing and permission", Category: CategoryStanding}},
		{"short noise dropped", ".,", nil},
		{"short other dropped", "none", nil},
		{"surrounding punctuation stripped", " CSCE 1001, ", Course{Code: "CSCE1001"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parser.parseAtomic(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAtomic(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  CSCE   1001 \n and\tCSCE 1101  ", "CSCE 1001 and CSCE 1101"},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadKeywordRules(t *testing.T) {
	t.Parallel()

	t.Run("override one category", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "keywords.toml")
		doc := "[keywords]\napproval = [\"departmental approval\"]\n"
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}

		rules, err := LoadKeywordRules(path)
		if err != nil {
			t.Fatalf("LoadKeywordRules: %v", err)
		}

		parser := NewWithRules(rules)
		got := parser.parseAtomic("departmental approval")
		want := TextCondition{Condition: "departmental approval", Category: CategoryApproval}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("parseAtomic = %#v, want %#v", got, want)
		}

		// The stock phrase was replaced, so it now falls through to other.
		got = parser.parseAtomic("instructor approval")
		if tc, ok := got.(TextCondition); !ok || tc.Category != CategoryOther {
			t.Errorf("stock phrase classified as %#v, want other", got)
		}
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "keywords.toml")
		if err := os.WriteFile(path, []byte("[keywords]\nbogus = [\"x\"]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadKeywordRules(path); err == nil {
			t.Error("expected error for unknown category")
		}
	})
}
