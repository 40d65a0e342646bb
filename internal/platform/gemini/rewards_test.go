package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRewards(t *testing.T) {
	cases := []struct {
		name         string
		text         string
		wantXP       int
		wantCurrency int
	}{
		{
			name:         "well-formed reward line",
			text:         "The hero prevailed.\n\nXP: 12, Currency: 7",
			wantXP:       12,
			wantCurrency: 7,
		},
		{
			name:         "extra whitespace",
			text:         "XP:  3,   Currency:  1",
			wantXP:       3,
			wantCurrency: 1,
		},
		{
			name:         "reward line buried in prose",
			text:         "A fine tale. The party earns XP: 8, Currency: 4 for their trouble.",
			wantXP:       8,
			wantCurrency: 4,
		},
		{
			name:         "missing reward line falls back to defaults",
			text:         "The hero prevailed, but the scribe forgot the ledger.",
			wantXP:       10,
			wantCurrency: 5,
		},
		{
			name:         "malformed line falls back to defaults",
			text:         "XP: lots, Currency: some",
			wantXP:       10,
			wantCurrency: 5,
		},
		{
			name:         "empty response",
			text:         "",
			wantXP:       10,
			wantCurrency: 5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			xp, currency := parseRewards(tc.text)
			assert.Equal(t, tc.wantXP, xp)
			assert.Equal(t, tc.wantCurrency, currency)
		})
	}
}
