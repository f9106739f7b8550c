package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/floorsync/core/internal/model"
)

func TestSkipStale_OlderThan24h(t *testing.T) {
	ior := model.IoRProduct{UpdatedAt: time.Now().Add(-25 * time.Hour)}
	sfp := model.SFProduct{UpdatedAt: time.Now().Add(-48 * time.Hour)}

	assert.True(t, skipStale(ior, sfp))
}

func TestSkipStale_IoROlderThanStorefront(t *testing.T) {
	now := time.Now()
	ior := model.IoRProduct{UpdatedAt: now.Add(-1 * time.Hour)}
	sfp := model.SFProduct{UpdatedAt: now}

	assert.True(t, skipStale(ior, sfp))
}

func TestSkipStale_FreshAndNewerThanStorefront(t *testing.T) {
	now := time.Now()
	ior := model.IoRProduct{UpdatedAt: now}
	sfp := model.SFProduct{UpdatedAt: now.Add(-1 * time.Hour)}

	assert.False(t, skipStale(ior, sfp))
}

func TestUntilNextMidnight_IsPositiveAndLessThanADay(t *testing.T) {
	now := time.Now()
	d := untilNextMidnight(now)

	assert.True(t, d > 0)
	assert.True(t, d <= 24*time.Hour)
}

func TestIndexCurrencies_KeysByCharCode(t *testing.T) {
	idx := indexCurrencies([]model.Currency{{CharCode: "RUB"}, {CharCode: "USD"}})

	_, hasRub := idx["RUB"]
	_, hasUSD := idx["USD"]

	assert.True(t, hasRub)
	assert.True(t, hasUSD)
}
