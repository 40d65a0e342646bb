package gemini

import (
	"regexp"
	"strconv"
)

// Defaults used when the model does not emit a parseable reward line.
const (
	defaultXP       = 10
	defaultCurrency = 5
)

var rewardPattern = regexp.MustCompile(`XP:\s*(\d+),\s*Currency:\s*(\d+)`)

// parseRewards extracts the "XP:<n>, Currency:<n>" reward line from the
// generated text. When the line is missing or malformed the defaults
// (10, 5) apply, so a sloppy model response never fails the generation.
func parseRewards(text string) (xp, currency int) {
	m := rewardPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultXP, defaultCurrency
	}

	xp, err := strconv.Atoi(m[1])
	if err != nil {
		xp = defaultXP
	}
	currency, err = strconv.Atoi(m[2])
	if err != nil {
		currency = defaultCurrency
	}
	return xp, currency
}
