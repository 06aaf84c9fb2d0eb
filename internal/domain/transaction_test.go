package domain

import (
	"testing"
	"time"
)

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Amount:      9.7,
		Kind:        KindExpense,
		Category:    "餐饮",
		Description: "魏家凉皮",
		Date:        time.Date(2026, 2, 11, 20, 34, 31, 0, time.Local),
	}

	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr bool
	}{
		{"valid draft", func(d *Draft) {}, false},
		{"zero amount", func(d *Draft) { d.Amount = 0 }, true},
		{"negative amount", func(d *Draft) { d.Amount = -9.7 }, true},
		{"unknown kind", func(d *Draft) { d.Kind = "transfer" }, true},
		{"zero date", func(d *Draft) { d.Date = time.Time{} }, true},
		{"blank description", func(d *Draft) { d.Description = "  " }, true},
		{"income kind", func(d *Draft) { d.Kind = KindIncome }, false},
		{"free-form category allowed", func(d *Draft) { d.Category = "宠物" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKindValid(t *testing.T) {
	if !KindExpense.Valid() || !KindIncome.Valid() {
		t.Error("expected both known kinds to be valid")
	}
	if Kind("transfer").Valid() || Kind("").Valid() {
		t.Error("expected unknown kinds to be invalid")
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("taxonomy member %q reported invalid", c)
		}
	}
	if ValidCategory("宠物") {
		t.Error("expected non-member to be invalid")
	}

	seen := make(map[string]bool)
	for _, c := range Categories {
		if seen[c] {
			t.Errorf("duplicate taxonomy entry %q", c)
		}
		seen[c] = true
	}
}
