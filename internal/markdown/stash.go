package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	stashStart = "\x02edbstash:"
	stashEnd   = "\x03"
)

var (
	stashParagraphRe = regexp.MustCompile("<p>" + stashStart + `(\d+)` + stashEnd + "</p>")
	stashBareRe      = regexp.MustCompile(stashStart + `(\d+)` + stashEnd)
)

// HTMLStash holds raw HTML fragments produced by preprocessors so the Markdown
// parser never sees (or escapes) them. Each stored fragment is represented in
// the source by an opaque placeholder.
type HTMLStash struct {
	blocks []string
}

// Store records fragment and returns its placeholder.
func (s *HTMLStash) Store(fragment string) string {
	s.blocks = append(s.blocks, fragment)
	return Placeholder(len(s.blocks) - 1)
}

// Block returns the fragment stored at index.
func (s *HTMLStash) Block(index int) (string, bool) {
	if index < 0 || index >= len(s.blocks) {
		return "", false
	}
	return s.blocks[index], true
}

// Len returns the number of stored fragments.
func (s *HTMLStash) Len() int { return len(s.blocks) }

// Reset drops every stored fragment.
func (s *HTMLStash) Reset() { s.blocks = s.blocks[:0] }

// Placeholder returns the placeholder text for the fragment at index.
func Placeholder(index int) string {
	return fmt.Sprintf("%s%d%s", stashStart, index, stashEnd)
}

// IsPlaceholder reports whether text is exactly one stash placeholder.
func IsPlaceholder(text string) bool {
	text = strings.TrimSpace(text)
	loc := stashBareRe.FindStringIndex(text)
	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

// rawHTMLPostprocessor restores stashed fragments. A placeholder that became
// its own paragraph is replaced together with the paragraph wrapper.
type rawHTMLPostprocessor struct {
	stash *HTMLStash
}

func (p rawHTMLPostprocessor) Run(text string) (string, error) {
	if p.stash.Len() == 0 {
		return text, nil
	}
	restore := func(re *regexp.Regexp) func(string) string {
		return func(match string) string {
			sub := re.FindStringSubmatch(match)
			i, err := strconv.Atoi(sub[1])
			if err != nil {
				return match
			}
			block, ok := p.stash.Block(i)
			if !ok {
				return match
			}
			return block
		}
	}
	text = stashParagraphRe.ReplaceAllStringFunc(text, restore(stashParagraphRe))
	text = stashBareRe.ReplaceAllStringFunc(text, restore(stashBareRe))
	return text, nil
}
