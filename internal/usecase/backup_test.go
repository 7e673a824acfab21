package usecase

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/infra/csvcodec"
	"github.com/aalvaropc/stockyard/internal/infra/fsbackup"
	"github.com/aalvaropc/stockyard/internal/infra/jsoncodec"
	"github.com/aalvaropc/stockyard/internal/infra/xmlcodec"
	"github.com/aalvaropc/stockyard/internal/ports"
	"github.com/aalvaropc/stockyard/internal/registry"
)

func allCodecs() []ports.Codec {
	return []ports.Codec{csvcodec.New(), jsoncodec.New(), xmlcodec.New()}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newBackup(inv ports.Inventory, store ports.BackupStore, opts ...BackupOption) *Backup {
	opts = append([]BackupOption{WithLogger(quietLogger())}, opts...)
	return NewBackup(inv, store, allCodecs(), opts...)
}

// scenarioRegistry builds P1 through the documented sequence:
// receive 5 @ 12.50, fail to deliver 20, deliver 15, pay 5.00.
func scenarioRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	_, err := reg.Create("P1", 10, 3, "Widget")
	require.NoError(t, err)

	date, err := domain.ParseDate("2024-01-10")
	require.NoError(t, err)
	found, err := reg.ReceiveShipment("P1", domain.Shipment{
		Quantity: 5,
		Date:     date,
		Shipper:  "Acme",
		Cost:     decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
	})
	require.NoError(t, err)
	require.True(t, found)

	delivered, _, err := reg.Deliver("P1", 20)
	require.NoError(t, err)
	require.False(t, delivered)

	delivered, _, err = reg.Deliver("P1", 15)
	require.NoError(t, err)
	require.True(t, delivered)

	due, _, err := reg.Pay("P1", decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	require.Equal(t, "7.50", domain.FormatMoney(due))
	return reg
}

func TestExportImport_ScenarioEveryFormat(t *testing.T) {
	src := scenarioRegistry(t)
	dir := filepath.Join(t.TempDir(), "backups")

	paths, err := newBackup(src, fsbackup.NewStore()).ExportAll(dir, "inventory")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "inventory.csv"),
		filepath.Join(dir, "inventory.json"),
		filepath.Join(dir, "inventory.xml"),
	}, paths)

	for _, path := range paths {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			format, err := FormatFromPath(path)
			require.NoError(t, err)

			dst := registry.New()
			report, err := newBackup(dst, fsbackup.NewStore()).Import(format, path)
			require.NoError(t, err)
			require.Equal(t, 1, report.Applied)
			require.Zero(t, report.Skipped)

			p, ok := dst.Find("P1")
			require.True(t, ok)
			require.Equal(t, 0, p.Stock())
			require.True(t, p.IsBelowThreshold())
			require.Equal(t, "7.50", domain.FormatMoney(p.PaymentDue()))
			require.Equal(t, []string{"Acme"}, p.Shippers())
			require.Len(t, p.ShipmentDates(), 1)
			require.Equal(t, "2024-01-10", domain.FormatDate(p.ShipmentDates()[0]))

			if diff := cmp.Diff(src.Snapshot(), dst.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportImport_FarFutureShipmentDateIsRejectedUpFront(t *testing.T) {
	src := registry.New()
	_, err := src.Create("A", 1, 0, "a")
	require.NoError(t, err)
	_, err = src.Create("B", 1, 0, "b")
	require.NoError(t, err)

	found, err := src.ReceiveShipment("B", domain.Shipment{Quantity: 1, Date: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.True(t, found)
	require.True(t, domain.IsKind(err, domain.KindInvalidArgument), "got %v", err)

	last, err := domain.ParseDate("9999-12-31")
	require.NoError(t, err)
	_, err = src.ReceiveShipment("B", domain.Shipment{Quantity: 1, Date: last, Shipper: "Acme"})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backups")
	paths, err := newBackup(src, fsbackup.NewStore()).ExportAll(dir, "inventory")
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			format, err := FormatFromPath(path)
			require.NoError(t, err)

			dst := registry.New()
			report, err := newBackup(dst, fsbackup.NewStore()).Import(format, path)
			require.NoError(t, err)
			require.Equal(t, 2, report.Applied)
			require.Zero(t, report.Skipped)

			if diff := cmp.Diff(src.Snapshot(), dst.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImport_SkipsShortCSVRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	content := "id,name,stock,threshold,paymentDue,shipmentDates,shippers\n" +
		"A,Alpha,1,0,0.00,,\n" +
		"B,Beta,2,0\n" +
		"C,Gamma,3,1,4.25,2024-01-01|2024-01-02,X|Y\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg := registry.New()
	report, err := newBackup(reg, fsbackup.NewStore()).Import(domain.FormatCSV, path)
	require.NoError(t, err)
	require.Equal(t, 2, report.Applied)
	require.Equal(t, 1, report.Skipped)

	_, ok := reg.Find("B")
	require.False(t, ok)
	c, ok := reg.Find("C")
	require.True(t, ok)
	require.Equal(t, []string{"X", "Y"}, c.Shippers())
	require.Equal(t, 2, reg.Size())
}

func TestImport_ReplacesExistingProduct(t *testing.T) {
	src := registry.New()
	_, err := src.Create("P1", 4, 1, "From backup")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "one.json")
	require.NoError(t, newBackup(src, fsbackup.NewStore()).Export(domain.FormatJSON, path))

	dst := registry.New()
	_, err = dst.Create("P1", 99, 0, "Live")
	require.NoError(t, err)
	_, err = dst.Create("P2", 1, 0, "Untouched")
	require.NoError(t, err)

	_, err = newBackup(dst, fsbackup.NewStore()).Import(domain.FormatJSON, path)
	require.NoError(t, err)

	p, _ := dst.Find("P1")
	require.Equal(t, "From backup", p.Name())
	require.Equal(t, 4, p.Stock())
	require.Equal(t, 2, dst.Size())
}

func TestImport_MissingFileIsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.xml")
	_, err := newBackup(registry.New(), fsbackup.NewStore()).Import(domain.FormatXML, path)
	require.True(t, domain.IsKind(err, domain.KindIO))

	var oe *domain.OpError
	require.ErrorAs(t, err, &oe)
	require.Equal(t, path, oe.Path)
}

func TestExport_UnknownFormat(t *testing.T) {
	err := newBackup(registry.New(), fsbackup.NewStore()).Export(domain.Format("yaml"), "x.yaml")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// failingStore accepts writes until it reaches a path with the failing suffix.
type failingStore struct {
	ports.BackupStore
	failSuffix string
	written    []string
}

func (s *failingStore) WriteFile(path string, data []byte) error {
	if strings.HasSuffix(path, s.failSuffix) {
		return domain.IOError("test.write", path, errors.New("disk full"))
	}
	s.written = append(s.written, path)
	return s.BackupStore.WriteFile(path, data)
}

func TestExportAll_AbortsOnFirstFailure(t *testing.T) {
	reg := scenarioRegistry(t)
	dir := t.TempDir()
	store := &failingStore{BackupStore: fsbackup.NewStore(), failSuffix: ".json"}

	paths, err := newBackup(reg, store).ExportAll(dir, "inv")
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindIO))

	var oe *domain.OpError
	require.ErrorAs(t, err, &oe)
	require.Equal(t, filepath.Join(dir, "inv.json"), oe.Path)

	require.Equal(t, []string{filepath.Join(dir, "inv.csv")}, paths)
	require.Equal(t, paths, store.written)
	_, statErr := os.Stat(filepath.Join(dir, "inv.xml"))
	require.True(t, os.IsNotExist(statErr))
}

func TestExportAll_DirectoryBlocked(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "backups")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := newBackup(registry.New(), fsbackup.NewStore()).ExportAll(blocker, "inv")
	require.True(t, domain.IsKind(err, domain.KindIO))
}

func TestExportAll_EmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	paths, err := newBackup(registry.New(), fsbackup.NewStore()).ExportAll(dir, "empty")
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, path := range paths {
		format, err := FormatFromPath(path)
		require.NoError(t, err)
		report, err := newBackup(registry.New(), fsbackup.NewStore()).Import(format, path)
		require.NoError(t, err)
		require.Zero(t, report.Applied)
		require.Zero(t, report.Skipped)
	}
}

func TestExportAll_WritesJournal(t *testing.T) {
	reg := scenarioRegistry(t)
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := fsbackup.NewStore(fsbackup.WithJournal(true), fsbackup.WithNow(func() time.Time { return at }))

	_, err := newBackup(reg, store, WithJournal(store)).ExportAll(dir, "inv")
	require.NoError(t, err)

	entries, err := fsbackup.ReadJournal(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, f := range domain.Formats() {
		require.Equal(t, f, entries[i].Format)
		require.Equal(t, 1, entries[i].Products)
		require.True(t, entries[i].At.Equal(at))
		require.NotEmpty(t, entries[i].ID)
	}
}

type brokenJournal struct{ calls int }

func (j *brokenJournal) Append(string, domain.BackupEntry) error {
	j.calls++
	return errors.New("journal unavailable")
}

func TestExport_JournalFailureIsNotSurfaced(t *testing.T) {
	j := &brokenJournal{}
	path := filepath.Join(t.TempDir(), "inv.csv")

	err := newBackup(registry.New(), fsbackup.NewStore(), WithJournal(j)).Export(domain.FormatCSV, path)
	require.NoError(t, err)
	require.Equal(t, 1, j.calls)
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]domain.Format{
		"a.csv":           domain.FormatCSV,
		"dir/b.JSON":      domain.FormatJSON,
		"/abs/c.Xml":      domain.FormatXML,
		"archive.tar.xml": domain.FormatXML,
	}
	for in, want := range cases {
		got, err := FormatFromPath(in)
		if err != nil || got != want {
			t.Fatalf("FormatFromPath(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	for _, in := range []string{"noext", "a.yaml", "a.csv.bak"} {
		if _, err := FormatFromPath(in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("FormatFromPath(%q): expected invalid argument, got %v", in, err)
		}
	}
}
