package elementdocs

import (
	"strings"
)

// ConvertFunc turns the captured markup of one tag into its replacement line.
type ConvertFunc func(markup string) (string, error)

// HTMLTagPreprocessor finds a custom tag in the page lines and replaces each
// occurrence with the converter output. A tag may span several lines; its
// lines are buffered from the opening marker to the closing marker and
// converted as one string.
//
// Lines holding at least two backticks are treated as inline code and passed
// through untouched, even while a tag is being buffered. A tag that is never
// closed is not converted and its lines are emitted as they were.
type HTMLTagPreprocessor struct {
	openMarker  string
	closeMarker string
	convert     ConvertFunc
}

// NewHTMLTagPreprocessor builds a preprocessor for tag.
func NewHTMLTagPreprocessor(tag string, convert ConvertFunc) *HTMLTagPreprocessor {
	return &HTMLTagPreprocessor{
		openMarker:  "<" + tag,
		closeMarker: "</" + tag + ">",
		convert:     convert,
	}
}

func (p *HTMLTagPreprocessor) Run(lines []string) ([]string, error) {
	out := make([]string, 0, len(lines))
	var buffer []string

	flush := func() {
		out = append(out, buffer...)
		buffer = nil
	}

	for _, line := range lines {
		if looksLikeInlineCode(line) {
			out = append(out, line)
			continue
		}

		hasOpen := strings.Contains(line, p.openMarker)
		hasClose := strings.Contains(line, p.closeMarker)

		switch {
		case hasOpen && hasClose:
			flush()
			converted, err := p.convert(line)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		case hasOpen:
			buffer = append(buffer, line)
		case hasClose && len(buffer) > 0:
			buffer = append(buffer, line)
			converted, err := p.convert(strings.Join(buffer, ""))
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
			buffer = nil
		case len(buffer) > 0:
			buffer = append(buffer, line)
		default:
			out = append(out, line)
		}
	}
	flush()
	return out, nil
}

func looksLikeInlineCode(line string) bool {
	return strings.Count(line, "`") >= 2
}
