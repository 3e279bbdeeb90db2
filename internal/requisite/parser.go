package requisite

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// coursePattern matches a catalog course reference: exactly four
	// uppercase letters, optional whitespace, four digits. Three-letter
	// department codes are resolved upstream by the title splitter; the
	// requisite pattern is intentionally rigid.
	coursePattern = regexp.MustCompile(`\b[A-Z]{4}\s*\d{4}\b`)

	// andConcurrent protects the "and concurrent" bigram from conjunction
	// splitting. It marks a concurrent-clause boundary, not a list "and".
	andConcurrent = regexp.MustCompile(`(?i)\band\s+concurrent\b`)

	andSplit = regexp.MustCompile(`(?i)\s+and\s+`)
	orSplit  = regexp.MustCompile(`(?i)\s+or\s+`)

	// groupSpan matches a maximal non-nested parenthesized span.
	groupSpan = regexp.MustCompile(`\([^()]+\)`)

	placeholderToken = regexp.MustCompile(`^~~~GROUP\d+~~~$`)

	// inlineConcurrent is the "(or concurrent)" modifier on a single course
	// reference, distinct from the Concurrent wrapper node.
	inlineConcurrent = regexp.MustCompile(`(?i)\(\s*or\s+concurrent\s*\)`)

	// concurrentTransition separates an embedded corequisite clause from
	// the prerequisite portion of the text.
	concurrentTransition = regexp.MustCompile(`(?i)(,?\s*and\s+concurrent\s+with|must\s+be\s+taken\s+concurrently\s+with)`)

	concurrentNote = regexp.MustCompile(`(?i)for\s+(.+?)(?:\.|$)`)
)

const concurrentSentinel = "~~~CONCURRENT~~~"

// Parser converts requisite text into expression trees. The zero value is
// not usable; construct with New or NewWithRules. Parsing is pure and a
// single Parser is safe for concurrent use.
type Parser struct {
	rules []KeywordRule
}

// New returns a Parser with the compiled-in keyword trigger table.
func New() *Parser {
	return &Parser{rules: DefaultKeywordRules()}
}

// NewWithRules returns a Parser classifying text conditions against the
// given trigger table, e.g. one loaded with LoadKeywordRules.
func NewWithRules(rules []KeywordRule) *Parser {
	return &Parser{rules: rules}
}

// Parse builds the AST for one course from its prerequisite field and its
// separately supplied concurrent field. Either field may be empty. A
// corequisite derived from an embedded transition phrase and one from the
// separate field are merged under an And node without deduplication.
func (p *Parser) Parse(prereqText, concurrentText string) AST {
	prereqText = Normalize(prereqText)
	concurrentText = Normalize(concurrentText)

	if prereqText == "" && concurrentText == "" {
		return AST{}
	}

	raw := prereqText
	prereqNode, concurrentNode := p.splitPrereqAndConcurrent(prereqText)

	if concurrentText != "" {
		raw += " | Concurrent: " + concurrentText
		if fromField := p.parseConcurrent(concurrentText); fromField != nil {
			if concurrentNode != nil {
				concurrentNode = And{Children: []Node{concurrentNode, fromField}}
			} else {
				concurrentNode = fromField
			}
		}
	}

	return AST{Prerequisites: prereqNode, Corequisites: concurrentNode, RawText: raw}
}

// splitPrereqAndConcurrent is the pre-pass separating a requirement string
// into its prerequisite and corequisite portions before expression parsing.
func (p *Parser) splitPrereqAndConcurrent(text string) (prereq, concurrent Node) {
	if text == "" {
		return nil, nil
	}

	lower := strings.ToLower(text)

	// Text that is entirely a concurrent statement produces no
	// prerequisite tree at all.
	if strings.HasPrefix(lower, "concurrent") || strings.HasPrefix(lower, "prerequisite: concurrent") {
		return nil, p.parseConcurrent(text)
	}

	if loc := concurrentTransition.FindStringIndex(text); loc != nil {
		prereqPart := strings.TrimSpace(text[:loc[0]])
		concurrentPart := strings.TrimSpace(text[loc[1]:])

		if prereqPart != "" {
			prereq = p.parseExpression(prereqPart)
		}
		if concurrentPart != "" {
			concurrent = p.parseConcurrent(concurrentPart)
		}
		return prereq, concurrent
	}

	return p.parseExpression(text), nil
}

// parseConcurrent parses corequisite text: every course-code occurrence
// becomes a Course leaf, multiple occurrences are joined under Or, and an
// optional trailing "for <reason>" clause is captured verbatim as the note.
func (p *Parser) parseConcurrent(text string) Node {
	if text == "" {
		return nil
	}

	codes := coursePattern.FindAllString(text, -1)

	note := ""
	if strings.Contains(strings.ToLower(text), "for") {
		if m := concurrentNote.FindStringSubmatch(text); m != nil {
			note = strings.TrimSpace(m[1])
		}
	}

	if len(codes) == 0 {
		return nil
	}

	var course Node
	if len(codes) > 1 {
		children := make([]Node, 0, len(codes))
		for _, code := range codes {
			children = append(children, Course{Code: normalizeCode(code)})
		}
		course = Or{Children: children}
	} else {
		course = Course{Code: normalizeCode(codes[0])}
	}

	return Concurrent{Course: course, Note: note}
}

// parseExpression is the top-level recursive expression parser. Conjunction
// is the outer structural split and disjunction the inner one: catalog
// authors write "A and (B or C) and D", not conventional boolean
// precedence. Group handling takes absolute precedence over splitting.
func (p *Parser) parseExpression(text string) Node {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	text = stripLabels(text)
	if text == "" {
		return nil
	}

	if hasGroupSpans(text) {
		return p.parseWithGroups(text)
	}

	parts := splitOnAnd(text)
	if len(parts) > 1 {
		var children []Node
		for _, part := range parts {
			if child := p.parseOr(strings.TrimSpace(part)); child != nil {
				children = append(children, child)
			}
		}
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return And{Children: children}
		}
	}

	return p.parseOr(text)
}

// splitOnAnd splits on whole-word "and" while protecting the
// "and concurrent" bigram.
func splitOnAnd(text string) []string {
	text = andConcurrent.ReplaceAllString(text, concurrentSentinel)
	parts := andSplit.Split(text, -1)
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, concurrentSentinel, "and concurrent")
	}
	return parts
}

// parseOr splits an "and"-delimited segment on whole-word "or", bottoming
// out at the atomic classifier.
func (p *Parser) parseOr(text string) Node {
	if text == "" {
		return nil
	}

	parts := orSplit.Split(text, -1)
	if len(parts) > 1 {
		var children []Node
		for _, part := range parts {
			if child := p.parseAtomic(strings.TrimSpace(part)); child != nil {
				children = append(children, child)
			}
		}
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return Or{Children: children}
		}
	}

	return p.parseAtomic(text)
}

// parseAtomic classifies a minimal requirement unit: a course reference
// (with optional inline "(or concurrent)" modifier) or a categorized text
// condition. Fragments classified "other" shorter than six characters are
// parsing noise and dropped.
func (p *Parser) parseAtomic(text string) Node {
	text = strings.Trim(text, " ,.")
	if text == "" {
		return nil
	}

	isConcurrent := false
	if loc := inlineConcurrent.FindStringIndex(text); loc != nil {
		isConcurrent = true
		text = strings.TrimSpace(text[:loc[0]]) + strings.TrimSpace(text[loc[1]:])
	}

	if code := coursePattern.FindString(text); code != "" {
		return Course{Code: normalizeCode(code), IsConcurrent: isConcurrent}
	}

	lower := strings.ToLower(text)
	category := CategoryOther
match:
	for _, rule := range p.rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				category = rule.Category
				break match
			}
		}
	}

	if category != CategoryOther || len(text) > 5 {
		return TextCondition{Condition: text, Category: category}
	}

	return nil
}

// parseWithGroups substitutes each maximal non-nested parenthesized span
// with an opaque placeholder, parses the outer expression, then recursively
// parses each placeholder's content and reinserts it as a Group node. The
// placeholder table is scratch state scoped to this call.
func (p *Parser) parseWithGroups(text string) Node {
	placeholders := make(map[string]string)
	counter := 0

	modified := groupSpan.ReplaceAllStringFunc(text, func(span string) string {
		// "(or concurrent)" is a course modifier, not a grouping; leave
		// it for the atomic classifier.
		if inlineConcurrent.MatchString(span) {
			return span
		}
		token := fmt.Sprintf("~~~GROUP%d~~~", counter)
		counter++
		placeholders[token] = span[1 : len(span)-1]
		return token
	})

	return p.replacePlaceholders(p.parseExpression(modified), placeholders)
}

// hasGroupSpans reports whether text contains at least one parenthesized
// span that is a real grouping rather than an inline "(or concurrent)"
// modifier.
func hasGroupSpans(text string) bool {
	if !strings.Contains(text, "(") || !strings.Contains(text, ")") {
		return false
	}
	for _, span := range groupSpan.FindAllString(text, -1) {
		if !inlineConcurrent.MatchString(span) {
			return true
		}
	}
	return false
}

// replacePlaceholders walks a parsed tree and swaps every leaf whose
// content is exactly a placeholder token for a Group wrapping the parsed
// span content. A token with no table entry is dropped rather than
// propagated as a dangling reference.
func (p *Parser) replacePlaceholders(node Node, placeholders map[string]string) Node {
	if node == nil {
		return nil
	}

	switch v := node.(type) {
	case Course:
		if resolved, ok := p.resolvePlaceholder(v.Code, placeholders); ok {
			return resolved
		}
		return v

	case TextCondition:
		if resolved, ok := p.resolvePlaceholder(v.Condition, placeholders); ok {
			return resolved
		}
		return v

	case And:
		children := p.replaceChildren(v.Children, placeholders)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return And{Children: children}
		}

	case Or:
		children := p.replaceChildren(v.Children, placeholders)
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return Or{Children: children}
		}

	case Group:
		expr := p.replacePlaceholders(v.Expression, placeholders)
		if expr == nil {
			return nil
		}
		return Group{Expression: expr}

	case Concurrent:
		course := p.replacePlaceholders(v.Course, placeholders)
		if course == nil {
			return nil
		}
		return Concurrent{Course: course, Note: v.Note}

	default:
		return node
	}
}

func (p *Parser) replaceChildren(children []Node, placeholders map[string]string) []Node {
	out := make([]Node, 0, len(children))
	for _, child := range children {
		if replaced := p.replacePlaceholders(child, placeholders); replaced != nil {
			out = append(out, replaced)
		}
	}
	return out
}

// resolvePlaceholder reports whether content is a placeholder token and, if
// so, returns the Group node for its span. The second return is true for
// any token, including unresolvable ones, whose replacement is nil.
func (p *Parser) resolvePlaceholder(content string, placeholders map[string]string) (Node, bool) {
	if !placeholderToken.MatchString(content) {
		return nil, false
	}
	span, ok := placeholders[content]
	if !ok {
		return nil, true
	}
	expr := p.parseExpression(span)
	if expr == nil {
		return nil, true
	}
	return Group{Expression: expr}, true
}

// normalizeCode removes internal whitespace from a matched course code so
// "CSCE 1001" and "CSCE1001" share one identity.
func normalizeCode(code string) string {
	return whitespaceRun.ReplaceAllString(code, "")
}
