package patcher

import (
	"regexp"
	"strings"
)

// Line-anchored so the commented-out form never matches again.
var (
	expectExtendPattern = regexp.MustCompile(`(?ms)^expect\(\)->extend.*?\}\);`)

	commentedExpectExtend = strings.Join([]string{
		"// expect()->extend('toBeOne', function () {",
		"//    return $this->toBe(1);",
		"//});",
	}, "\n")
)

// CommentOutExpectExtend replaces the example expectation extension of a Pest
// configuration file with its commented-out form.
func CommentOutExpectExtend(content string) string {
	return expectExtendPattern.ReplaceAllLiteralString(content, commentedExpectExtend)
}

// CommentOutFunction replaces the top-level example function name() with a
// commented-out stub. The match ends at the first closing brace.
func CommentOutFunction(name string) func(string) string {
	pattern := regexp.MustCompile(`(?ms)^function ` + regexp.QuoteMeta(name) + `\(\).*?\}`)
	replacement := strings.Join([]string{
		"// function " + name + "()",
		"//{",
		"//    // ..",
		"//}",
	}, "\n")

	return func(content string) string {
		return pattern.ReplaceAllLiteralString(content, replacement)
	}
}
