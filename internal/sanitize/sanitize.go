// file: internal/sanitize/sanitize.go
// version: 1.1.0
// guid: b4ef8132-d3bd-42b8-822d-8cda98b00ddf

// Package sanitize turns scraped article markup into presentable paragraphs.
//
// Clean is a pure function and a fixed point: cleaning the rejoined output of
// Clean again yields the same paragraphs.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdfalk/newsdeck/internal/upstream"
	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinParagraphLength is the shortest line, in runes, kept as prose.
const MinParagraphLength = 50

// titleFragmentLength is how many normalized title runes a "read more" line
// must contain to be treated as self-referential.
const titleFragmentLength = 20

var botWallSignatures = []string{
	"verify you are human",
	"verifying you are human",
	"verify that you are human",
	"needs to review the security of your connection",
	"checking your browser before accessing",
	"attention required! | cloudflare",
	"cloudflare ray id",
	"enable javascript and cookies to continue",
}

var boilerplate = []string{
	"accept cookies",
	"accept all cookies",
	"we use cookies",
	"cookie policy",
	"cookie settings",
	"enable notifications",
	"turn on notifications",
	"allow notifications",
	"subscribe to our newsletter",
	"sign up for our newsletter",
	"subscribe now",
	"already a subscriber",
	"privacy policy",
	"terms of service",
	"terms of use",
	"all rights reserved",
	"[object object]",
	"{{",
	"}}",
	"${",
}

var readMoreMarkers = []string{
	"read more",
	"read the full",
	"read full",
	"continue reading",
	"keep reading",
	"related:",
	"see also",
}

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b.*?</style\s*>`)
	blockBreak  = regexp.MustCompile(`(?i)<(br\s*/?|/?p\b[^>]*|/div\s*|/li\s*|/h[1-6]\s*|/blockquote\s*|/tr\s*)>`)

	mdImage   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdBold    = regexp.MustCompile(`\*\*|__`)
	mdHeading = regexp.MustCompile(`^#{1,6}\s*`)
)

// Clean filters raw markup into an ordered, deduplicated paragraph list.
// A bot-wall page yields an empty result.
func Clean(raw, title string) []string {
	out := []string{}
	if IsBlocked(raw) {
		return out
	}

	fragment := titleFragment(title)
	seen := make(map[string]struct{})

	for _, line := range splitLines(raw) {
		if isBoilerplate(line) || isReadMore(line, fragment) {
			continue
		}
		text := strip(line)
		if text == "" {
			continue
		}
		if hasSignature(text) {
			return []string{}
		}
		if isBoilerplate(text) || isReadMore(text, fragment) {
			continue
		}
		if utf8.RuneCountInString(text) < MinParagraphLength {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	// Dropped lines can bring the parts of a signature together.
	if IsBlocked(strings.Join(out, "\n\n")) {
		return []string{}
	}
	return out
}

// IsBlocked reports whether raw looks like a human-verification page.
// Signatures match anywhere in the document, across line breaks and markup.
func IsBlocked(raw string) bool {
	return hasSignature(collapse(raw)) || hasSignature(collapse(stripTags(raw)))
}

// Check returns upstream.ErrContentBlocked for bot-wall pages.
func Check(raw string) error {
	if IsBlocked(raw) {
		return fmt.Errorf("sanitize: %w", upstream.ErrContentBlocked)
	}
	return nil
}

// Disclose splits paragraphs into the first visible ones and a count of the rest.
func Disclose(paragraphs []string, visible int) ([]string, int) {
	if visible < 0 {
		visible = 0
	}
	if visible >= len(paragraphs) {
		return paragraphs, 0
	}
	return paragraphs[:visible], len(paragraphs) - visible
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	raw = scriptBlock.ReplaceAllString(raw, "\n")
	raw = styleBlock.ReplaceAllString(raw, "\n")
	raw = blockBreak.ReplaceAllString(raw, "\n")
	return strings.Split(raw, "\n")
}

// strip removes tags and markdown decoration until nothing changes.
func strip(line string) string {
	for {
		next := collapse(stripMarkdown(stripTags(line)))
		if next == line {
			return next
		}
		line = next
	}
}

func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "noscript":
		return true
	}
	return false
}

func stripMarkdown(s string) string {
	s = mdImage.ReplaceAllString(s, "")
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdBold.ReplaceAllString(s, "")
	s = mdHeading.ReplaceAllString(strings.TrimSpace(s), "")
	return s
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasSignature(text string) bool {
	lower := strings.ToLower(text)
	for _, sig := range botWallSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(collapse(line))
	for _, phrase := range boilerplate {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func isReadMore(line, fragment string) bool {
	if fragment == "" {
		return false
	}
	lower := strings.ToLower(collapse(line))
	for _, marker := range readMoreMarkers {
		if strings.Contains(lower, marker) {
			return strings.Contains(normalize(line), fragment)
		}
	}
	return false
}

func titleFragment(title string) string {
	n := []rune(normalize(title))
	if len(n) > titleFragmentLength {
		n = n[:titleFragmentLength]
	}
	return string(n)
}

// normalize folds diacritics, lowercases and keeps only letters and digits.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
