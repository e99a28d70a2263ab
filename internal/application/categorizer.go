package application

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

var (
	urlPattern   = regexp.MustCompile(`https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_+.~#?&/=]*)`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[- ]?)?\(?\d{3}\)?[- ]?\d{3}[- ]?\d{4}|\+\d{10,15}`)

	codePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(function|def|class|import|const|let|var)\s+\w+`),
		regexp.MustCompile(`[{};]\s*\n`),
		regexp.MustCompile(`(if|for|while|return)\s*\(`),
		regexp.MustCompile(`(public|private|protected)\s+(static\s+)?(\w+\s+)+\w+\s*\(`),
	}
)

// passwordIndicators are matched case-insensitively anywhere in the text.
var passwordIndicators = []string{"password", "passwd", "pwd", "pass", "secret", "key", "token"}

// codeLengthThreshold is the rune length above which a single code pattern
// match is enough to classify text as code.
const codeLengthThreshold = 50

// Categorize classifies clipboard text. Rules are evaluated in order and the
// first match wins: url, email, phone, password, code, then text. Blank input
// is text.
func Categorize(text string) model.Category {
	if strings.TrimSpace(text) == "" {
		return model.CategoryText
	}

	if urlPattern.MatchString(text) {
		return model.CategoryURL
	}
	if emailPattern.MatchString(text) {
		return model.CategoryEmail
	}
	if phonePattern.MatchString(text) {
		return model.CategoryPhone
	}
	if looksSensitive(text) {
		return model.CategoryPassword
	}
	if looksLikeCode(text) {
		return model.CategoryCode
	}

	return model.CategoryText
}

func looksSensitive(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range passwordIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func looksLikeCode(text string) bool {
	var matches int
	for _, p := range codePatterns {
		if p.MatchString(text) {
			matches++
		}
	}
	return matches >= 2 || (matches >= 1 && utf8.RuneCountInString(text) > codeLengthThreshold)
}
