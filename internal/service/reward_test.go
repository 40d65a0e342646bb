package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReward(t *testing.T) {
	cases := []struct {
		name         string
		participants int
		wantXP       int
		wantCurrency int
	}{
		{"solo keeps the full pool", 1, 10, 5},
		{"pair splits evenly where possible", 2, 5, 2},
		{"trio drops the remainder", 3, 3, 1},
		{"more participants than currency", 6, 1, 0},
		{"pool exhausted", 11, 0, 0},
		{"zero treated as one", 0, 10, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			share := SplitReward(tc.participants)
			assert.Equal(t, tc.wantXP, share.XP)
			assert.Equal(t, tc.wantCurrency, share.Currency)
		})
	}
}
