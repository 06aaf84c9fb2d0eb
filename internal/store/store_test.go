package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

func testDraft(desc string, amount float64) domain.Draft {
	return domain.Draft{
		Amount:      amount,
		Kind:        domain.KindExpense,
		Category:    "餐饮",
		Description: desc,
		Date:        time.Date(2026, 2, 11, 20, 34, 31, 0, time.Local),
	}
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.json")
	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, path
}

func TestOpenMissingFileYieldsEmpty(t *testing.T) {
	s, _ := openTestStore(t)
	if got := s.List(); len(got) != 0 {
		t.Errorf("List() = %d transactions, want 0", len(got))
	}
}

func TestRoundTrip(t *testing.T) {
	s, path := openTestStore(t)

	first, err := s.Add(testDraft("魏家凉皮", 9.7))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	second, err := s.Add(testDraft("打车", 25))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	reloaded, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	got := reloaded.List()
	if len(got) != 2 {
		t.Fatalf("reloaded %d transactions, want 2", len(got))
	}

	// Newest first: second Add sits at the head.
	for i, want := range []domain.Transaction{second, first} {
		if got[i].ID != want.ID ||
			got[i].Amount != want.Amount ||
			got[i].Kind != want.Kind ||
			got[i].Category != want.Category ||
			got[i].Description != want.Description ||
			!got[i].Date.Equal(want.Date) ||
			!got[i].CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("transaction %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := openTestStore(t)

	tx, err := s.Add(testDraft("咖啡", 15))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := s.Delete(tx.ID); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := s.Delete(tx.ID); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("List() = %d transactions after double delete, want 0", len(got))
	}
}

func TestUpdatePreservesIdentity(t *testing.T) {
	s, _ := openTestStore(t)

	tx, err := s.Add(testDraft("咖啡", 15))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	edited := tx
	edited.Amount = 18
	edited.Description = "拿铁"
	edited.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC) // must be ignored

	got, err := s.Update(edited)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ID != tx.ID {
		t.Errorf("Update changed id: %s -> %s", tx.ID, got.ID)
	}
	if !got.CreatedAt.Equal(tx.CreatedAt) {
		t.Errorf("Update changed creation time: %v -> %v", tx.CreatedAt, got.CreatedAt)
	}
	if got.Amount != 18 || got.Description != "拿铁" {
		t.Errorf("Update did not apply edits: %+v", got)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s, _ := openTestStore(t)

	tx := domain.Transaction{
		ID:          "missing",
		Amount:      1,
		Kind:        domain.KindExpense,
		Category:    "其他",
		Description: "x",
		Date:        time.Now(),
	}
	if _, err := s.Update(tx); err != ErrNotFound {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	s, _ := openTestStore(t)

	bad := testDraft("x", 10)
	bad.Date = time.Time{}
	if _, err := s.Add(bad); err == nil {
		t.Error("expected Add to reject a draft without a resolvable date")
	}

	bad = testDraft("x", -5)
	if _, err := s.Add(bad); err == nil {
		t.Error("expected Add to reject a non-positive amount")
	}
}

func TestOpenQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transactions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed on corrupt data: %v", err)
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("List() = %d transactions, want 0 after quarantine", len(got))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var quarantined bool
	for _, e := range entries {
		if e.Name() != "transactions.json" && filepath.Ext(e.Name()) != "" {
			quarantined = true
		}
	}
	if !quarantined {
		t.Error("expected corrupt file to be renamed aside, not deleted")
	}

	// The store must be usable after quarantine.
	if _, err := s.Add(testDraft("x", 1)); err != nil {
		t.Fatalf("Add after quarantine failed: %v", err)
	}
}
