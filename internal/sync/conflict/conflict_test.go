package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"familystock/internal/wire"
)

func TestHasConflict(t *testing.T) {
	r := NewResolver(LastWriteWins)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, r.HasConflict(base, base.Add(time.Second)), "remote newer")
	assert.False(t, r.HasConflict(base, base), "equal timestamps")
	assert.False(t, r.HasConflict(base.Add(time.Second), base), "local newer")
}

func TestResolve_LastWriteWins(t *testing.T) {
	r := NewResolver(LastWriteWins)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	local := wire.StockItem{ID: "a", Name: "local", UpdatedAt: base}
	remote := wire.StockItem{ID: "a", Name: "remote", UpdatedAt: base.Add(time.Minute)}

	assert.Equal(t, "remote", Resolve(r, local, remote).Name)

	local.UpdatedAt = base.Add(time.Hour)
	assert.Equal(t, "local", Resolve(r, local, remote).Name)
}

func TestResolve_TieFavorsLocal(t *testing.T) {
	r := NewResolver(LastWriteWins)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	local := wire.StockItem{ID: "a", Name: "local", UpdatedAt: ts}
	remote := wire.StockItem{ID: "a", Name: "remote", UpdatedAt: ts}

	assert.Equal(t, "local", Resolve(r, local, remote).Name)
}

func TestResolve_ManualBehavesAsLastWriteWins(t *testing.T) {
	r := NewResolver(Manual)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	local := wire.Receipt{ID: "a", ShopName: "local", Timestamp: base}
	remote := wire.Receipt{ID: "a", ShopName: "remote", Timestamp: base.Add(time.Second)}

	assert.Equal(t, "remote", Resolve(r, local, remote).ShopName)
}

func TestResolve_ToleratesSkewedClocks(t *testing.T) {
	r := NewResolver(LastWriteWins)

	// remote clock runs ahead of wall time; the later stamp still wins
	future := time.Now().Add(48 * time.Hour).UTC()
	local := wire.ShoppingEntry{ID: "a", Unit: "local", UpdatedAt: time.Now().UTC()}
	remote := wire.ShoppingEntry{ID: "a", Unit: "remote", UpdatedAt: future}

	assert.Equal(t, "remote", Resolve(r, local, remote).Unit)
}
