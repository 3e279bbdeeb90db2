package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aucplan/coursegraph/internal/catalog"
)

// Detail pages are a flat run of nodes under the title heading, with
// <strong> elements acting as section headers ("Prerequisites:",
// "Concurrent:", ...). Extraction walks the run once, routing text into the
// section most recently opened.
const sectionDescriptionStart = "description_start"

var sectionHeaders = []struct {
	marker  string
	section string
}{
	{"Prerequisite", "Prerequisites"},
	{"Concurrent", "Concurrent"},
	{"Description", "Description"},
	{"When Offered", "When Offered"},
	{"Note", "Notes"},
	{"Corequisite", "Corequisite"},
	{"Cross-listed", "Cross-listed"},
	{"Cross listed", "Cross-listed"},
	{"Hour", "Hours"},
	{"Repeatable", "Repeatable"},
}

var (
	creditsPattern = regexp.MustCompile(`\((\d+(?:-\d+)?)\s*cr\.\)`)
	sameAsPattern  = regexp.MustCompile(`\n*\s*[Ss]ame\s+as\s*\n`)
)

var boilerplateLinks = map[string]bool{
	"Print-Friendly Page (opens a new window)": true,
	"Add to Portfolio (opens a new window)":    true,
	"Back to Top": true,
	"HELP":        true,
}

// ExtractCourse parses a course detail document into a raw course record.
// Requisite text is captured verbatim; parsing it is the pipeline's job.
func ExtractCourse(doc *goquery.Document) catalog.Course {
	var course catalog.Course

	title := doc.Find("h1#course_preview_title").First()
	if title.Length() == 0 {
		return course
	}

	course.Title = cleanText(title.Text())
	if m := creditsPattern.FindStringSubmatch(course.Title); m != nil {
		course.Credits = m[1]
	}

	h1 := title.Nodes[0]
	sections := make(map[string][]string)
	current := sectionDescriptionStart

	for child := h1.Parent.FirstChild; child != nil; child = child.NextSibling {
		if child == h1 {
			continue
		}

		switch {
		case child.Type == html.TextNode:
			if text := strings.TrimSpace(child.Data); text != "" {
				sections[current] = append(sections[current], text)
			}

		case child.Type != html.ElementNode:
			// Comments and the like.

		case child.Data == "strong":
			header := strings.TrimSuffix(cleanText(nodeText(child)), ":")
			for _, h := range sectionHeaders {
				if strings.Contains(header, h.marker) {
					current = h.section
					break
				}
			}

		case child.Data == "br":
			sections[current] = append(sections[current], "\n")

		case child.Data == "a":
			if text := nodeText(child); !boilerplateLinks[strings.TrimSpace(text)] {
				sections[current] = append(sections[current], text)
			}

		case child.Data == "div" && nodeAttr(child, "style") == "display: inline":
			sections[current] = append(sections[current], nodeText(child))
		}
	}

	description := strings.TrimSpace(strings.Join(sections["Description"], "\n"))
	if description == "" {
		description = strings.TrimSpace(strings.Join(sections[sectionDescriptionStart], "\n"))
	}

	// A trailing "same as ..." line in the description is really a
	// cross-listing.
	if loc := sameAsPattern.FindStringIndex(description); loc != nil {
		after := strings.TrimSpace(description[loc[1]:])
		description = strings.TrimSpace(description[:loc[0]])
		if after != "" {
			course.CrossListed = "same as " + after
		}
	}

	course.Description = description
	course.Prerequisites = joinSection(sections, "Prerequisites")
	course.Concurrent = joinSection(sections, "Concurrent")
	if crossListed := joinSection(sections, "Cross-listed"); crossListed != "" {
		course.CrossListed = crossListed
	}
	course.Hours = strings.TrimLeft(joinSection(sections, "Hours"), ". ")
	course.WhenOffered = joinSection(sections, "When Offered")
	course.Repeatable = joinSection(sections, "Repeatable")
	course.Notes = joinSection(sections, "Notes")

	return course
}

func joinSection(sections map[string][]string, name string) string {
	return cleanText(strings.Join(sections[name], " "))
}

// cleanText collapses whitespace runs and unescapes HTML entities.
func cleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
