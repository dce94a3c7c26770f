package auction

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestCanBid(t *testing.T) {
	// Plain case: nothing frozen anywhere.
	check.True(t, CanBid(10000, 0, 0, 10000))
	check.False(t, CanBid(10000, 0, 0, 10001))

	// Coins frozen on other lots shrink what is available here.
	check.True(t, CanBid(10000, 4000, 0, 6000))
	check.False(t, CanBid(10000, 4000, 0, 6001))

	// Raising your own bid reuses the freeze already held on this lot, so
	// only the difference needs covering: 10000 - 6000 + 4000 = 8000.
	check.True(t, CanBid(10000, 6000, 4000, 4050))
	check.True(t, CanBid(10000, 6000, 4000, 8000))
	check.False(t, CanBid(10000, 6000, 4000, 8050))

	// Fully committed account: the existing freeze can be matched but not
	// raised.
	check.True(t, CanBid(10000, 10000, 4000, 4000))
	check.False(t, CanBid(10000, 10000, 4000, 4050))
}

// account replays the freeze arithmetic the ledger issues against the
// database, tracking per-lot freezes alongside the running total.
type account struct {
	budget      int64
	frozenTotal int64
	freezes     map[int]int64
}

func newAccount(budget int64) *account {
	return &account{budget: budget, freezes: map[int]int64{}}
}

func (a *account) freeze(lot int, amount int64) {
	a.frozenTotal = applyFreeze(a.frozenTotal, a.freezes[lot], amount)
	a.freezes[lot] = amount
}

func (a *account) release(lot int) {
	amount, ok := a.freezes[lot]
	if !ok {
		return
	}
	a.frozenTotal = applyRelease(a.frozenTotal, amount)
	delete(a.freezes, lot)
}

func (a *account) settle(lot int) {
	amount := a.freezes[lot]
	a.frozenTotal = applyRelease(a.frozenTotal, amount)
	a.budget -= amount
	delete(a.freezes, lot)
}

func (a *account) sumFreezes() int64 {
	var sum int64
	for _, amount := range a.freezes {
		sum += amount
	}
	return sum
}

func TestFrozenTotalTracksFreezes(t *testing.T) {
	acct := newAccount(20000)

	steps := []struct {
		name string
		run  func()
	}{
		{"freeze lot 1", func() { acct.freeze(1, 4000) }},
		{"freeze lot 2", func() { acct.freeze(2, 3000) }},
		{"raise own bid on lot 1", func() { acct.freeze(1, 5000) }},
		{"outbid on lot 2", func() { acct.release(2) }},
		{"freeze lot 3", func() { acct.freeze(3, 2500) }},
		{"win lot 1", func() { acct.settle(1) }},
		{"lot 3 closes unsold", func() { acct.release(3) }},
		{"release without a freeze is a no-op", func() { acct.release(2) }},
	}

	// The frozen total must equal the sum of the per-lot freezes after
	// every single operation, not just at the end.
	for _, step := range steps {
		step.run()
		check.Equal(t, acct.sumFreezes(), acct.frozenTotal)
	}

	check.Equal(t, int64(0), acct.frozenTotal)
	// Only the hammer price of the won lot left the budget.
	check.Equal(t, int64(15000), acct.budget)
}

func TestApplyFreezeReplacesPrevious(t *testing.T) {
	// A raise replaces the old freeze, it does not stack on top of it.
	check.Equal(t, int64(5000), applyFreeze(4000, 4000, 5000))
	check.Equal(t, int64(4000), applyFreeze(0, 0, 4000))
	check.Equal(t, int64(0), applyRelease(4000, 4000))
}
