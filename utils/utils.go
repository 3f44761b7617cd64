package utils

// AvgCharsPerToken is a conservative estimate for mixed content
const AvgCharsPerToken = 2

// EstimateCharsFromTokens estimates the number of characters for a given token count
func EstimateCharsFromTokens(tokens int) int {
	return tokens * AvgCharsPerToken
}

// charCount sums line lengths plus one newline each
func charCount(lines []string) int {
	total := 0
	for _, line := range lines {
		total += len(line) + 1
	}
	return total
}

// TrimContextWindow shrinks preamble and postamble so that together with
// the code block they fit a token budget. Lines furthest from the edit
// range go first: the top of the preamble and the bottom of the postamble,
// alternating, so the context stays balanced around the code. The code
// block itself is never trimmed. A non-positive budget disables trimming.
func TrimContextWindow(preamble, code, postamble []string, maxTokens int) ([]string, []string) {
	if maxTokens <= 0 {
		return preamble, postamble
	}
	maxChars := EstimateCharsFromTokens(maxTokens)

	used := charCount(preamble) + charCount(code) + charCount(postamble)
	if used <= maxChars {
		return preamble, postamble
	}

	pre := make([]string, len(preamble))
	copy(pre, preamble)
	post := make([]string, len(postamble))
	copy(post, postamble)

	dropPre := true
	for used > maxChars && (len(pre) > 0 || len(post) > 0) {
		if dropPre && len(pre) > 0 {
			used -= len(pre[0]) + 1
			pre = pre[1:]
		} else if len(post) > 0 {
			used -= len(post[len(post)-1]) + 1
			post = post[:len(post)-1]
		}
		dropPre = !dropPre
	}
	return pre, post
}

// ContextRange computes the 0-indexed slice bounds for a context window of
// contextLines unchanged lines above and below the 1-indexed inclusive
// range [first, last] within a buffer of length total. Returned bounds are
// [preStart, first-1) for the preamble and [last, postEnd) for the
// postamble.
func ContextRange(first, last, contextLines, total int) (preStart, postEnd int) {
	preStart = first - 1 - contextLines
	if preStart < 0 {
		preStart = 0
	}
	postEnd = last + contextLines
	if postEnd > total {
		postEnd = total
	}
	return preStart, postEnd
}
