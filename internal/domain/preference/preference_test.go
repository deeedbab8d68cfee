package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreference_IncludesDay(t *testing.T) {
	p := &Preference{Days: []string{"Monday", "wed", "FRI"}}

	assert.True(t, p.IncludesDay("Mon"))
	assert.True(t, p.IncludesDay("Wed"))
	assert.True(t, p.IncludesDay("friday"))
	assert.False(t, p.IncludesDay("Tue"))
	assert.False(t, p.IncludesDay(""))
	assert.False(t, p.IncludesDay("M"))
}

func TestPreference_MatchesDescription(t *testing.T) {
	p := &Preference{ShiftType: "checkout"}

	assert.True(t, p.MatchesDescription("Checkout 💳"))
	assert.True(t, p.MatchesDescription("Receiving: CHECKOUT support"))
	assert.False(t, p.MatchesDescription("Cashier 💵"))
}
