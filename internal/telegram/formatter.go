package telegram

import (
	"html"
	"regexp"
	"strings"

	"github.com/kitbuilder587/finking/internal/domain"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	headerPattern = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
)

// FormatReply renders the model's markdown-ish reply as Telegram HTML.
// Only headers and bold survive, everything else is escaped text.
func FormatReply(reply *domain.ChatReply) string {
	text := html.EscapeString(reply.Reply)
	text = headerPattern.ReplaceAllString(text, "<b>$1</b>")
	text = boldPattern.ReplaceAllString(text, "<b>$1</b>")
	return text
}

func FormatError(message string) string {
	return "⚠️ " + html.EscapeString(message)
}

// SplitMessage cuts text into parts of at most maxLen characters, preferring
// line and word boundaries and never cutting inside an HTML tag. An element
// left open at a cut is closed at the end of the part and reopened at the
// start of the next one, so every part is valid Telegram HTML on its own.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	// длинные теги не переоткрываем, иначе на текст не останется места
	maxTag := maxLen / 2

	var (
		messages []string
		open     []htmlElement
	)
	for len(runes) > 0 {
		prefix := openingTags(open)
		if len(prefix) > maxTag {
			prefix, open = nil, nil
		}

		budget := maxLen - len(prefix)
		var (
			splitPoint int
			next       []htmlElement
			suffix     []rune
		)
		for {
			splitPoint = splitPointWithin(runes, budget, open, maxTag)
			next, _ = walkElements(open, runes[:splitPoint], maxTag)
			suffix = closingTags(next)
			if len(prefix)+splitPoint+len(suffix) <= maxLen {
				break
			}
			reduced := maxLen - len(prefix) - len(suffix)
			if reduced < 1 || reduced >= budget {
				break
			}
			budget = reduced
		}

		part := make([]rune, 0, len(prefix)+splitPoint+len(suffix))
		part = append(part, prefix...)
		part = append(part, runes[:splitPoint]...)
		part = append(part, suffix...)
		messages = append(messages, string(part))

		open = next
		runes = runes[splitPoint:]
	}

	return messages
}

func splitPointWithin(runes []rune, budget int, open []htmlElement, maxTag int) int {
	if len(runes) <= budget {
		return len(runes)
	}

	_, depths := walkElements(open, runes[:budget+1], maxTag)
	splitPoint := findSafeSplitPoint(runes, budget, depths)
	if splitPoint <= 0 || splitPoint > len(runes) {
		splitPoint = budget
	}

	// не оставляем открывающий тег последним в части
	if runes[splitPoint-1] == '>' {
		start := splitPoint - 1
		for start >= 0 && runes[start] != '<' {
			start--
		}
		if start > 0 && runes[start+1] != '/' {
			splitPoint = start
		}
	}
	return splitPoint
}

// findSafeSplitPoint picks a cut in text[:maxLen]. depths[i] is the number of
// elements open before text[i]; cuts outside any element win.
func findSafeSplitPoint(text []rune, maxLen int, depths []int) int {
	// сначала перевод строки, потом пробел, не ломая HTML-теги
	for _, outside := range []bool{true, false} {
		for _, sep := range []rune{'\n', ' '} {
			for i := maxLen - 1; i > maxLen/2; i-- {
				if i >= len(text) || isInsideHTMLTag(text, i) {
					continue
				}
				if text[i] != sep {
					continue
				}
				if outside && i+1 < len(depths) && depths[i+1] > 0 {
					continue
				}
				return i + 1
			}
		}
	}

	// внутри тега - режем перед ним
	if isInsideHTMLTag(text, maxLen-1) {
		for i := maxLen - 1; i > 0; i-- {
			if text[i] == '<' {
				return i
			}
		}
		// тег длиннее лимита - отдаём его целиком
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				return i + 1
			}
		}
	}

	return maxLen
}

type htmlElement struct {
	name string
	tag  []rune
}

// walkElements replays the tags of text on top of open and returns the
// elements still open at the end together with the nesting depth before
// every position. Opening tags longer than maxTag are not tracked.
func walkElements(open []htmlElement, text []rune, maxTag int) ([]htmlElement, []int) {
	stack := append([]htmlElement(nil), open...)
	depths := make([]int, len(text)+1)
	depths[0] = len(stack)

	for i := 0; i < len(text); {
		if text[i] == '<' {
			if end := indexRune(text, i, '>'); end >= 0 {
				for k := i + 1; k <= end; k++ {
					depths[k] = len(stack)
				}
				stack = applyTag(stack, text[i:end+1], maxTag)
				depths[end+1] = len(stack)
				i = end + 1
				continue
			}
		}
		depths[i+1] = len(stack)
		i++
	}
	return stack, depths
}

func applyTag(stack []htmlElement, tag []rune, maxTag int) []htmlElement {
	body := strings.TrimSpace(string(tag[1 : len(tag)-1]))

	if rest, ok := strings.CutPrefix(body, "/"); ok {
		name := tagName(rest)
		for j := len(stack) - 1; j >= 0; j-- {
			if stack[j].name == name {
				return stack[:j]
			}
		}
		return stack
	}
	if strings.HasSuffix(body, "/") {
		return stack
	}

	name := tagName(body)
	if name == "" || len(tag) > maxTag {
		return stack
	}
	return append(stack, htmlElement{name: name, tag: tag})
}

func tagName(s string) string {
	if i := strings.IndexAny(s, " \t\n/"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

func openingTags(open []htmlElement) []rune {
	var out []rune
	for _, e := range open {
		out = append(out, e.tag...)
	}
	return out
}

func closingTags(open []htmlElement) []rune {
	var out []rune
	for i := len(open) - 1; i >= 0; i-- {
		out = append(out, []rune("</"+open[i].name+">")...)
	}
	return out
}

func indexRune(text []rune, from int, r rune) int {
	for i := from; i < len(text); i++ {
		if text[i] == r {
			return i
		}
	}
	return -1
}

func isInsideHTMLTag(text []rune, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}
