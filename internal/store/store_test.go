// ABOUTME: Contract tests run against every store backend plus column codec checks
// ABOUTME: SQLite runs on a temp file; Postgres runs only when CTEDIT_TEST_POSTGRES_DSN is set

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

func openSQLite(t *testing.T) *SQL {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "db", "templates.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func backends(t *testing.T) map[string]func(t *testing.T) template.Store {
	t.Helper()
	b := map[string]func(t *testing.T) template.Store{
		"memory": func(t *testing.T) template.Store { return NewMemory(Seed()...) },
		"sqlite": func(t *testing.T) template.Store {
			s := openSQLite(t)
			if _, err := s.SeedIfEmpty(context.Background(), Seed()); err != nil {
				t.Fatal(err)
			}
			return s
		},
	}
	if dsn := os.Getenv("CTEDIT_TEST_POSTGRES_DSN"); dsn != "" {
		b["postgres"] = func(t *testing.T) template.Store {
			ctx := context.Background()
			s, err := Open(ctx, DriverPostgres, dsn)
			if err != nil {
				t.Fatalf("Open(postgres) error: %v", err)
			}
			if _, err := s.db.ExecContext(ctx, `TRUNCATE templates RESTART IDENTITY`); err != nil {
				t.Fatal(err)
			}
			if _, err := s.SeedIfEmpty(ctx, Seed()); err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return b
}

func TestStore_Contract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			t.Run("fetch seeded", func(t *testing.T) {
				got, err := s.Fetch(ctx, 1)
				if err != nil {
					t.Fatal(err)
				}
				want := Seed()[0]
				want.Fields = got.Fields
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("Fetch(1) mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("fetch missing", func(t *testing.T) {
				if _, err := s.Fetch(ctx, 999); !errors.Is(err, template.ErrNotFound) {
					t.Errorf("Fetch(999) = %v; want ErrNotFound", err)
				}
			})

			t.Run("partial persist", func(t *testing.T) {
				u := template.Update{
					Form: template.Form{
						Content:     "<p>Hello</p>",
						Attachments: &template.Attachment{Name: "x.pdf", URL: "https://example.com/uploads/x.pdf"},
						IsActive:    false,
					},
					Changed: template.FieldSet(template.FieldContent).With(template.FieldAttachments, template.FieldIsActive),
				}
				if err := s.Persist(ctx, 1, u); err != nil {
					t.Fatal(err)
				}
				got, err := s.Fetch(ctx, 1)
				if err != nil {
					t.Fatal(err)
				}
				if got.Content != "<p>Hello</p>" || got.IsActive || got.Attachments == nil || got.Attachments.Name != "x.pdf" {
					t.Errorf("after persist = %+v", got)
				}
				if diff := cmp.Diff([]string{"Urgent", "Optional"}, got.Tags); diff != "" {
					t.Errorf("tags changed (-want +got):\n%s", diff)
				}
				if got.ClientName != "Client A" {
					t.Errorf("ClientName = %q; want untouched", got.ClientName)
				}
			})

			t.Run("persist missing", func(t *testing.T) {
				err := s.Persist(ctx, 999, template.FullUpdate(template.Form{Name: "x"}))
				if !errors.Is(err, template.ErrNotFound) {
					t.Errorf("Persist(999) = %v; want ErrNotFound", err)
				}
			})

			t.Run("create rename list delete", func(t *testing.T) {
				d, err := s.Create(ctx, "  Contract C ")
				if err != nil {
					t.Fatal(err)
				}
				if d.Name != "Contract C" || d.ID <= 2 || d.IsActive || len(d.Tags) != 0 {
					t.Errorf("Create() = %+v", d)
				}
				if err := template.Rename(ctx, s, d.ID, "Contract C2"); err != nil {
					t.Fatal(err)
				}
				list, err := s.List(ctx)
				if err != nil {
					t.Fatal(err)
				}
				if len(list) != 3 || list[2].Name != "Contract C2" || list[0].ID != 1 {
					t.Errorf("List() = %+v", list)
				}
				if err := s.Delete(ctx, d.ID); err != nil {
					t.Fatal(err)
				}
				if err := s.Delete(ctx, d.ID); !errors.Is(err, template.ErrNotFound) {
					t.Errorf("second Delete = %v; want ErrNotFound", err)
				}
				if _, err := s.Create(ctx, " "); !errors.Is(err, ErrEmptyName) {
					t.Errorf("Create(blank) = %v; want ErrEmptyName", err)
				}
			})
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	t.Parallel()

	m := NewMemory(Seed()...)
	d, _ := m.Fetch(context.Background(), 1)
	d.Tags[0] = "mutated"
	again, _ := m.Fetch(context.Background(), 1)
	if again.Tags[0] != "Urgent" {
		t.Errorf("store aliased caller slice: %v", again.Tags)
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemory().Persist(ctx, 1, template.Update{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Persist(canceled) = %v; want context.Canceled", err)
	}
}

func TestSQL_SeedIfEmptyOnce(t *testing.T) {
	t.Parallel()

	s := openSQLite(t)
	ctx := context.Background()
	if n, err := s.SeedIfEmpty(ctx, Seed()); err != nil || n != 2 {
		t.Fatalf("first SeedIfEmpty = %d, %v", n, err)
	}
	if n, err := s.SeedIfEmpty(ctx, Seed()); err != nil || n != 0 {
		t.Fatalf("second SeedIfEmpty = %d, %v", n, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestSQL_Rebind(t *testing.T) {
	t.Parallel()

	pg := &SQL{dialect: DriverPostgres}
	if got, want := pg.rebind("a = ? AND b = ?"), "a = $1 AND b = $2"; got != want {
		t.Errorf("rebind = %q; want %q", got, want)
	}
	lite := &SQL{dialect: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestCodec_Tags(t *testing.T) {
	t.Parallel()

	enc, err := encodeTags([]string{"Urgent", `q"uote`})
	if err != nil {
		t.Fatal(err)
	}
	if enc != `["Urgent","q\"uote"]` {
		t.Errorf("encodeTags = %s", enc)
	}
	dec, err := decodeTags(enc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Urgent", `q"uote`}, dec); diff != "" {
		t.Errorf("decodeTags mismatch (-want +got):\n%s", diff)
	}
	if dec, err := decodeTags("null"); err != nil || dec == nil || len(dec) != 0 {
		t.Errorf("decodeTags(null) = %#v, %v", dec, err)
	}
	if _, err := decodeTags(`["a",`); err == nil {
		t.Error("expected error for truncated tags")
	}
}

func TestCodec_Attachment(t *testing.T) {
	t.Parallel()

	a := &template.Attachment{Name: "a b.pdf", URL: "https://example.com/uploads/a%20b.pdf"}
	enc, err := encodeAttachment(a)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := decodeAttachment(enc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, dec); diff != "" {
		t.Errorf("attachment mismatch (-want +got):\n%s", diff)
	}
	if dec, err := decodeAttachment(`{"url":"u","extra":{"x":[1]},"name":null}`); err != nil || dec.URL != "u" || dec.Name != "" {
		t.Errorf("decodeAttachment with extras = %+v, %v", dec, err)
	}
	if dec, err := decodeAttachment("null"); err != nil || dec != nil {
		t.Errorf("decodeAttachment(null) = %+v, %v", dec, err)
	}
}
