package registry

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/stockyard/internal/domain"
)

func ids(ps []*domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID())
	}
	sort.Strings(out)
	return out
}

func TestCreateFindRemove(t *testing.T) {
	r := New()

	p, err := r.Create("P1", 10, 3, "Widget")
	require.NoError(t, err)
	require.Equal(t, 1, r.Size())

	got, ok := r.Find("P1")
	require.True(t, ok)
	require.Same(t, p, got)

	_, ok = r.Find("missing")
	require.False(t, ok)

	require.True(t, r.Remove("P1"))
	require.False(t, r.Remove("P1"))
	require.Equal(t, 0, r.Size())
}

func TestCreateEmptyID(t *testing.T) {
	r := New()
	_, err := r.Create("", 1, 1, "x")
	require.True(t, domain.IsKind(err, domain.KindInvalidArgument))
	require.Equal(t, 0, r.Size())
}

func TestCreateReplacesExisting(t *testing.T) {
	r := New()
	_, _ = r.Create("P1", 1, 0, "old")
	found, err := r.ReceiveShipment("P1", domain.Shipment{Quantity: 5, Shipper: "A"})
	require.True(t, found)
	require.NoError(t, err)

	_, err = r.Create("P1", 2, 0, "new")
	require.NoError(t, err)

	p, _ := r.Find("P1")
	require.Equal(t, "new", p.Name())
	require.Equal(t, 2, p.Stock())
	require.Empty(t, p.Shippers())
	require.Equal(t, 1, r.Size())
}

func TestOperationsOnMissingProduct(t *testing.T) {
	r := New()

	found, err := r.ReceiveShipment("x", domain.Shipment{Quantity: 1})
	require.False(t, found)
	require.NoError(t, err)

	delivered, found, err := r.Deliver("x", 1)
	require.False(t, delivered)
	require.False(t, found)
	require.NoError(t, err)

	_, found, err = r.Pay("x", decimal.NewFromInt(1))
	require.False(t, found)
	require.NoError(t, err)

	require.False(t, r.Rename("x", "y"))
	require.False(t, r.SetThreshold("x", 1))
}

func TestDelegatesAndSurfacesFailures(t *testing.T) {
	r := New()
	_, _ = r.Create("P1", 10, 3, "Widget")

	found, err := r.ReceiveShipment("P1", domain.Shipment{Quantity: 0})
	require.True(t, found)
	require.True(t, domain.IsKind(err, domain.KindInvalidArgument))

	delivered, found, err := r.Deliver("P1", 11)
	require.True(t, found)
	require.NoError(t, err)
	require.False(t, delivered)

	delivered, _, err = r.Deliver("P1", 10)
	require.NoError(t, err)
	require.True(t, delivered)

	_, found, err = r.Pay("P1", decimal.NewFromInt(-1))
	require.True(t, found)
	require.True(t, domain.IsKind(err, domain.KindInvalidArgument))

	require.True(t, r.Rename("P1", "Renamed"))
	require.True(t, r.SetThreshold("P1", 0))
	p, _ := r.Find("P1")
	require.Equal(t, "Renamed", p.Name())
	require.False(t, p.IsBelowThreshold())
}

func TestListAllAndLowStock(t *testing.T) {
	r := New()
	_, _ = r.Create("A", 1, 5, "")
	_, _ = r.Create("B", 5, 5, "")
	_, _ = r.Create("C", 9, 2, "")
	_, _ = r.Create("D", 0, 1, "")

	require.Equal(t, []string{"A", "B", "C", "D"}, ids(r.ListAll()))
	require.Equal(t, []string{"A", "D"}, ids(r.LowStock()))
}

func TestSnapshotAndRestore(t *testing.T) {
	r := New()
	_, _ = r.Create("P1", 3, 1, "Widget")
	_, _ = r.ReceiveShipment("P1", domain.Shipment{
		Quantity: 2,
		Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Shipper:  "Acme",
		Cost:     decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
	})

	snap := r.Snapshot()
	require.Len(t, snap, 1)

	fresh := New()
	for _, rec := range snap {
		_, err := fresh.Restore(rec)
		require.NoError(t, err)
	}
	require.Equal(t, snap, fresh.Snapshot())

	_, err := fresh.Restore(domain.ProductRecord{})
	require.True(t, domain.IsKind(err, domain.KindInvalidArgument))
}

func TestConcurrentStructuralAndProductOps(t *testing.T) {
	r := New()
	_, _ = r.Create("hot", 0, 0, "")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Create(fmt.Sprintf("p%d", i), i, 0, "")
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.ReceiveShipment("hot", domain.Shipment{Quantity: 1})
		}()
		go func(i int) {
			defer wg.Done()
			_ = r.Remove(fmt.Sprintf("p%d", i-1))
			_ = r.ListAll()
			_ = r.LowStock()
			_ = r.Snapshot()
			_ = r.Size()
		}(i)
	}
	wg.Wait()

	p, ok := r.Find("hot")
	require.True(t, ok)
	require.Equal(t, 40, p.Stock())
	require.Len(t, p.Shippers(), 40)
}

func TestSnapshot_OrderedByID(t *testing.T) {
	r := New()
	for _, id := range []string{"c", "a", "B", "b"} {
		_, err := r.Create(id, 1, 0, "")
		require.NoError(t, err)
	}

	var got []string
	for _, rec := range r.Snapshot() {
		got = append(got, rec.ID)
	}
	require.Equal(t, []string{"B", "a", "b", "c"}, got)
}
