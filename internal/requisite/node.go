// Package requisite parses free-text course requisite descriptions into a
// boolean expression tree. Catalog prerequisite strings are irregular natural
// language ("CSCE 1001 and (CSCE 1101 or CSCE 2303)", "Senior standing and
// concurrent with CSCE 4301"); the parser reduces them to a closed set of
// node kinds that downstream consumers can walk exhaustively.
package requisite

import (
	"encoding/json"
	"fmt"
)

// Category classifies a text condition that cannot be reduced to a course
// reference.
type Category string

// Categories assigned by the atomic classifier, in matching order.
const (
	CategoryStanding    Category = "standing"
	CategoryApproval    Category = "approval"
	CategoryExemption   Category = "exemption"
	CategoryPreparation Category = "preparation"
	CategoryOther       Category = "other"
)

// Node is the closed union of requisite expression kinds. The only
// implementations are Course, And, Or, Group, Concurrent, and TextCondition;
// consumers switch exhaustively so that adding a kind forces every walk to
// be revisited. A tree is immutable once constructed and never shared
// between courses.
type Node interface {
	isNode()
	// Kind returns the JSON discriminator for the node.
	Kind() string
}

// Course is a leaf referencing a single course by its normalized code
// (four letters and four digits, no internal whitespace, e.g. "CSCE1001").
type Course struct {
	Code         string `json:"course_code"`
	IsConcurrent bool   `json:"is_concurrent"`
	IsOptional   bool   `json:"is_optional"`
}

// And requires all of its children. It never has fewer than one child after
// construction; a combination that would produce zero children collapses to
// nil one level up.
type And struct {
	Children []Node `json:"children"`
}

// Or requires at least one of its children. The same minimum-one-child
// invariant as And applies.
type Or struct {
	Children []Node `json:"children"`
}

// Group wraps a parenthesized sub-expression. The wrapper is preserved even
// when logically redundant so consumers can render the original grouping.
type Group struct {
	Expression Node `json:"expression"`
}

// Concurrent is a requirement satisfiable by taking the referenced course
// (or one of several, as an Or of Course leaves) simultaneously. Note holds
// a verbatim trailing "for <reason>" clause when present.
type Concurrent struct {
	Course Node   `json:"course"`
	Note   string `json:"note"`
}

// TextCondition is an unstructured requirement fragment kept verbatim, such
// as "Senior standing" or "consent of instructor".
type TextCondition struct {
	Condition string   `json:"condition"`
	Category  Category `json:"category"`
}

func (Course) isNode()        {}
func (And) isNode()           {}
func (Or) isNode()            {}
func (Group) isNode()         {}
func (Concurrent) isNode()    {}
func (TextCondition) isNode() {}

func (Course) Kind() string        { return "course" }
func (And) Kind() string           { return "and" }
func (Or) Kind() string            { return "or" }
func (Group) Kind() string         { return "group" }
func (Concurrent) Kind() string    { return "concurrent" }
func (TextCondition) Kind() string { return "text_condition" }

// AST is the parse result for one course: two optional trees plus the raw
// text they were derived from. A nil tree means "no requirement of that
// kind", not "unparsed". Err is set when per-course processing failed
// defensively; the raw text is still preserved.
type AST struct {
	Prerequisites Node   `json:"prerequisites"`
	Corequisites  Node   `json:"corequisites"`
	RawText       string `json:"raw_text"`
	Err           string `json:"parse_error,omitempty"`
}

// marshalNode wraps a node with its type discriminator.
func marshalNode(n Node) (json.RawMessage, error) {
	type course struct {
		Type string `json:"type"`
		Course
	}
	type children struct {
		Type     string            `json:"type"`
		Children []json.RawMessage `json:"children"`
	}
	type group struct {
		Type       string          `json:"type"`
		Expression json.RawMessage `json:"expression"`
	}
	type concurrent struct {
		Type   string          `json:"type"`
		Course json.RawMessage `json:"course"`
		Note   string          `json:"note"`
	}
	type textCondition struct {
		Type string `json:"type"`
		TextCondition
	}

	switch v := n.(type) {
	case Course:
		return json.Marshal(course{Type: v.Kind(), Course: v})
	case And, Or:
		var kids []Node
		if a, ok := v.(And); ok {
			kids = a.Children
		} else {
			kids = v.(Or).Children
		}
		out := children{Type: v.Kind(), Children: make([]json.RawMessage, 0, len(kids))}
		for _, c := range kids {
			raw, err := marshalNode(c)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, raw)
		}
		return json.Marshal(out)
	case Group:
		raw, err := marshalNode(v.Expression)
		if err != nil {
			return nil, err
		}
		return json.Marshal(group{Type: v.Kind(), Expression: raw})
	case Concurrent:
		raw, err := marshalNode(v.Course)
		if err != nil {
			return nil, err
		}
		return json.Marshal(concurrent{Type: v.Kind(), Course: raw, Note: v.Note})
	case TextCondition:
		return json.Marshal(textCondition{Type: v.Kind(), TextCondition: v})
	default:
		return nil, fmt.Errorf("requisite: unknown node kind %T", n)
	}
}

// UnmarshalNode decodes a type-discriminated node document. A JSON null
// yields a nil node.
func UnmarshalNode(data []byte) (Node, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if string(data) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("requisite: decode node: %w", err)
	}

	switch probe.Type {
	case "course":
		var v Course
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("requisite: decode course node: %w", err)
		}
		return v, nil
	case "and", "or":
		var doc struct {
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("requisite: decode %s node: %w", probe.Type, err)
		}
		kids := make([]Node, 0, len(doc.Children))
		for _, raw := range doc.Children {
			child, err := UnmarshalNode(raw)
			if err != nil {
				return nil, err
			}
			if child != nil {
				kids = append(kids, child)
			}
		}
		if probe.Type == "and" {
			return And{Children: kids}, nil
		}
		return Or{Children: kids}, nil
	case "group":
		var doc struct {
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("requisite: decode group node: %w", err)
		}
		expr, err := UnmarshalNode(doc.Expression)
		if err != nil {
			return nil, err
		}
		return Group{Expression: expr}, nil
	case "concurrent":
		var doc struct {
			Course json.RawMessage `json:"course"`
			Note   string          `json:"note"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("requisite: decode concurrent node: %w", err)
		}
		course, err := UnmarshalNode(doc.Course)
		if err != nil {
			return nil, err
		}
		return Concurrent{Course: course, Note: doc.Note}, nil
	case "text_condition":
		var v TextCondition
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("requisite: decode text condition node: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("requisite: unknown node type %q", probe.Type)
	}
}

// MarshalJSON implements json.Marshaler with the type-discriminated node
// encoding used by the catalog file format.
func (a AST) MarshalJSON() ([]byte, error) {
	out := struct {
		Prerequisites json.RawMessage `json:"prerequisites"`
		Corequisites  json.RawMessage `json:"corequisites"`
		RawText       string          `json:"raw_text"`
		Err           string          `json:"parse_error,omitempty"`
	}{
		Prerequisites: json.RawMessage("null"),
		Corequisites:  json.RawMessage("null"),
		RawText:       a.RawText,
		Err:           a.Err,
	}

	if a.Prerequisites != nil {
		raw, err := marshalNode(a.Prerequisites)
		if err != nil {
			return nil, err
		}
		out.Prerequisites = raw
	}
	if a.Corequisites != nil {
		raw, err := marshalNode(a.Corequisites)
		if err != nil {
			return nil, err
		}
		out.Corequisites = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AST) UnmarshalJSON(data []byte) error {
	var doc struct {
		Prerequisites json.RawMessage `json:"prerequisites"`
		Corequisites  json.RawMessage `json:"corequisites"`
		RawText       string          `json:"raw_text"`
		Err           string          `json:"parse_error"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("requisite: decode ast: %w", err)
	}

	a.RawText = doc.RawText
	a.Err = doc.Err
	a.Prerequisites = nil
	a.Corequisites = nil

	if len(doc.Prerequisites) > 0 {
		n, err := UnmarshalNode(doc.Prerequisites)
		if err != nil {
			return err
		}
		a.Prerequisites = n
	}
	if len(doc.Corequisites) > 0 {
		n, err := UnmarshalNode(doc.Corequisites)
		if err != nil {
			return err
		}
		a.Corequisites = n
	}
	return nil
}
