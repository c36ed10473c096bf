package parser

import (
	"regexp"
	"strings"
)

const (
	titleLevel     = 1
	sectionLevel   = 2
	itemLevel      = 3
	subLevel       = 4
	parameterLevel = 5
	maxATXLevel    = 6

	separator = "***"
)

var (
	definedInRegex = regexp.MustCompile(`Defined in:.*(?:\n|$)`)
	// A blockquote line running up to the next blank line or the end of the body.
	signatureRegex = regexp.MustCompile(`(?ms)^[ \t]*>\s*(.*?)(?:\n\n|\n\z|\z)`)
)

type bucket int

const (
	bucketConstructors bucket = iota + 1
	bucketProperties
	bucketMethods
	bucketExtends
)

// sectionBuckets is the closed set of recognized section headers. Matching is
// exact and case-sensitive; every other header lands in DocPage.Others.
func sectionBuckets() map[string]bucket {
	return map[string]bucket{
		"Constructors": bucketConstructors,
		"Properties":   bucketProperties,
		"Methods":      bucketMethods,
		"Extends":      bucketExtends,
	}
}

// titlePrefixes are the role labels the generator puts in front of a page title.
func titlePrefixes() []string {
	return []string{
		"Class: ",
		"Interface: ",
		"Enumeration: ",
		"Type Alias: ",
		"Function: ",
		"Variable: ",
		"Namespace: ",
		"Module: ",
	}
}

func subsectionsExcludedFromDescription() []string {
	return []string{"Parameters", "Returns", "Overrides", "Inherited from"}
}

// block is a heading and the lines below it up to the next heading of the
// same level.
type block struct {
	heading string
	body    []string
}

// ParseDocument extracts a DocPage from raw reference markdown. Missing
// structure leaves the matching fields empty; it never fails.
func ParseDocument(raw string) DocPage {
	page := DocPage{
		Constructors: []DocItem{},
		Properties:   []DocItem{},
		Methods:      []DocItem{},
		Others:       []Section{},
	}

	content := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	page.Title = extractTitle(lines)

	intro, sections := splitAtHeadings(lines, sectionLevel)
	page.Description = extractIntroDescription(intro)

	buckets := sectionBuckets()
	for _, section := range sections {
		body := strings.Join(section.body, "\n")

		switch buckets[section.heading] {
		case bucketConstructors:
			page.Constructors = append(page.Constructors, parseItems(section.body)...)
		case bucketProperties:
			page.Properties = append(page.Properties, parseItems(section.body)...)
		case bucketMethods:
			page.Methods = append(page.Methods, parseItems(section.body)...)
		case bucketExtends:
			extends := strings.TrimSpace(body)
			page.Extends = &extends
		default:
			page.Others = append(page.Others, Section{
				Title:   section.heading,
				Content: body,
			})
		}
	}

	return page
}

func extractTitle(lines []string) string {
	for _, line := range lines {
		if headingLevel(line) != titleLevel {
			continue
		}

		title := headingText(line, titleLevel)
		for _, prefix := range titlePrefixes() {
			if trimmed, found := strings.CutPrefix(title, prefix); found {
				return strings.TrimSpace(trimmed)
			}
		}
		return title
	}
	return ""
}

func extractIntroDescription(intro []string) string {
	for i, line := range intro {
		if headingLevel(line) != titleLevel {
			continue
		}

		description := strings.TrimSpace(strings.Join(intro[i+1:], "\n"))
		description = definedInRegex.ReplaceAllString(description, "")
		return strings.TrimSpace(description)
	}
	return ""
}

func parseItems(lines []string) []DocItem {
	_, blocks := splitAtHeadings(lines, itemLevel)

	items := make([]DocItem, 0, len(blocks))
	for _, b := range blocks {
		if b.heading == "" {
			continue
		}
		items = append(items, parseItem(b.heading, b.body))
	}
	return items
}

func parseItem(name string, lines []string) DocItem {
	item := DocItem{
		Name:       name,
		Flags:      []Flag{},
		Parameters: []DocParameter{},
	}

	body := strings.Join(lines, "\n")
	subs := findSubsections(lines)

	sigStart, sigEnd := -1, -1
	if loc := signatureRegex.FindStringSubmatchIndex(body); loc != nil {
		sigStart, sigEnd = loc[0], loc[3]
		item.Signature = strings.TrimSpace(strings.ReplaceAll(body[loc[2]:loc[3]], "**", ""))
		item.Flags = detectFlags(item.Signature)
	}

	if sub, ok := subs.first("Parameters"); ok {
		item.Parameters = parseParameters(lines[sub.start+1 : sub.end])
	}

	if sub, ok := subs.first("Returns"); ok {
		item.Returns = extractReturns(lines[sub.start+1 : sub.end])
	}

	item.Description = extractItemDescription(body, sigStart, sigEnd)
	return item
}

// extractReturns is the trimmed subsection body. A member separator that
// follows the last subsection stays in it.
func extractReturns(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func detectFlags(signature string) []Flag {
	flags := []Flag{}
	for _, f := range flagOrder() {
		if strings.Contains(signature, "`"+string(f)+"`") {
			flags = append(flags, f)
		}
	}
	return flags
}

func parseParameters(lines []string) []DocParameter {
	_, blocks := splitAtHeadings(lines, parameterLevel)

	params := make([]DocParameter, 0, len(blocks))
	for _, b := range blocks {
		rest := nonBlankLines(b.body)
		if b.heading == "" && len(rest) == 0 {
			continue
		}
		params = append(params, parseParameter(b.heading, rest))
	}
	return params
}

func parseParameter(rawName string, rest []string) DocParameter {
	name, optional := strings.CutSuffix(rawName, "?")
	param := DocParameter{
		Name:     name,
		Optional: optional,
	}

	typeIdx := -1
	for i, line := range rest {
		if isTypeLine(line) {
			typeIdx = i
			break
		}
	}

	descParts := make([]string, 0, len(rest))
	for i, line := range rest {
		if i == typeIdx {
			continue
		}
		descParts = append(descParts, line)
	}

	if typeIdx >= 0 {
		param.Type = rest[typeIdx]
		if _, def, found := strings.Cut(param.Type, " = "); found {
			param.DefaultValue = strings.TrimSpace(def)
		}
	}
	param.Description = strings.TrimSpace(strings.Join(descParts, " "))

	return param
}

// isTypeLine is the type heuristic for parameter bodies: a code span, a link
// bracket or a default value separator.
func isTypeLine(line string) bool {
	return strings.Contains(line, "`") ||
		strings.Contains(line, "[") ||
		strings.Contains(line, " = ")
}

func extractItemDescription(body string, sigStart, sigEnd int) string {
	if sigStart >= 0 {
		body = body[:sigStart] + body[sigEnd:]
	}

	body = definedInRegex.ReplaceAllString(body, "")

	lines := strings.Split(body, "\n")
	drop := make([]bool, len(lines))
	subs := findSubsections(lines)
	for _, name := range subsectionsExcludedFromDescription() {
		for _, sub := range subs.named(name) {
			for i := sub.start; i < sub.end; i++ {
				drop[i] = true
			}
		}
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !drop[i] {
			kept = append(kept, line)
		}
	}

	description := strings.ReplaceAll(strings.Join(kept, "\n"), separator, "")
	return strings.TrimSpace(description)
}

type subsection struct {
	name  string
	start int
	end   int
}

type subsections []subsection

func (s subsections) first(name string) (subsection, bool) {
	for _, sub := range s {
		if sub.name == name {
			return sub, true
		}
	}
	return subsection{}, false
}

func (s subsections) named(name string) []subsection {
	var out []subsection
	for _, sub := range s {
		if sub.name == name {
			out = append(out, sub)
		}
	}
	return out
}

// findSubsections locates fourth-level headings. Each runs until the next
// heading of level four or lower, so fifth-level parameter headings stay inside.
func findSubsections(lines []string) subsections {
	var subs subsections
	for i, line := range lines {
		if headingLevel(line) != subLevel {
			continue
		}

		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if level := headingLevel(lines[j]); level > 0 && level <= subLevel {
				end = j
				break
			}
		}

		subs = append(subs, subsection{
			name:  headingText(line, subLevel),
			start: i,
			end:   end,
		})
	}
	return subs
}

// splitAtHeadings cuts lines at every heading of exactly the given level.
// Lines before the first such heading are returned as the preamble.
func splitAtHeadings(lines []string, level int) ([]string, []block) {
	var preamble []string
	var blocks []block

	for _, line := range lines {
		if headingLevel(line) == level {
			blocks = append(blocks, block{heading: headingText(line, level)})
			continue
		}

		if len(blocks) == 0 {
			preamble = append(preamble, line)
			continue
		}

		last := &blocks[len(blocks)-1]
		last.body = append(last.body, line)
	}

	return preamble, blocks
}

// headingLevel returns the level of a line written as one to six '#'
// followed by a space, starting in the first column, or 0.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && level <= maxATXLevel && line[level] == '#' {
		level++
	}
	if level >= 1 && level <= maxATXLevel && level < len(line) && line[level] == ' ' {
		return level
	}
	return 0
}

func headingText(line string, level int) string {
	return strings.TrimSpace(line[level:])
}

func nonBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
