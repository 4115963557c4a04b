package clip

import "fmt"

// Preview shortens text for memory storage when the full text is too long
// to remember verbatim. It keeps the first and last half of the character
// budget with an elision note in between. Text within the budget is
// returned unchanged.
func Preview(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	half := maxChars / 2
	elided := len(runes) - maxChars
	return string(runes[:half]) +
		fmt.Sprintf(" ...\n...(%d characters elided)...\n... ", elided) +
		string(runes[len(runes)-half:])
}
