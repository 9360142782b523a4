package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func rec(date Date, cat, item, user string, price, qty string, unit string) Record {
	p, _ := decimal.NewFromString(price)
	q, _ := decimal.NewFromString(qty)
	return Record{Date: date, Category: cat, Item: item, PricePaid: p, Quantity: q, Unit: unit, User: user}
}

func TestRecordValidate(t *testing.T) {
	good := rec(NewDate(2023, 1, 15), "Food", "Milk", "alice", "3.00", "2", "Count")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		r    Record
		want error
	}{
		{"zero date", rec(Date{}, "Food", "Milk", "alice", "1.00", "1", "Count"), ErrInvalidDate},
		{"negative price", rec(NewDate(2023, 1, 1), "Food", "Milk", "alice", "-1.00", "1", "Count"), ErrNegativePrice},
		{"negative quantity", rec(NewDate(2023, 1, 1), "Food", "Milk", "alice", "1.00", "-1", "Count"), ErrNegativeQuantity},
		{"fractional count", rec(NewDate(2023, 1, 1), "Food", "Eggs", "alice", "1.00", "1.5", "Count"), ErrFractionalCount},
		{"empty user", rec(NewDate(2023, 1, 1), "Food", "Milk", "", "1.00", "1", "Count"), ErrEmptyUser},
	}
	for _, tc := range cases {
		if err := tc.r.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// Fractional quantities are fine for continuous units.
	if err := rec(NewDate(2023, 1, 1), "Food", "Flour", "alice", "1.00", "1.5", "Kg").Validate(); err != nil {
		t.Fatalf("expected ok for fractional Kg, got %v", err)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	r := Record{Date: NewDate(2023, 1, 1), Category: "  ", Item: " Milk ", Unit: "", User: " alice "}
	n := r.Normalize()
	if n.Category != DefaultCategory {
		t.Fatalf("expected default category, got %q", n.Category)
	}
	if n.Item != "Milk" || n.User != "alice" || n.Unit != "Count" {
		t.Fatalf("unexpected normalize result: %+v", n)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-01-15")
	if err != nil || d.Year() != 2023 || d.Month() != 1 {
		t.Fatalf("unexpected parse: d=%v err=%v", d, err)
	}
	if d.String() != "2023-01-15" {
		t.Fatalf("unexpected round trip: %s", d.String())
	}
	if _, err := ParseDate("15/01/2023"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRecordFromRowDefaultsUser(t *testing.T) {
	// Row written by the old single-user version: no User column.
	row := []string{"2023-01-15", "Food", "Milk", "Market", "3.00", "2", "Count"}
	r, err := RecordFromRow(row, "User1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.User != "User1" {
		t.Fatalf("expected default owner, got %q", r.User)
	}
	if r.Date.String() != "2023-01-15" || r.Category != "Food" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestRecordFromRowRejectsMalformed(t *testing.T) {
	bads := [][]string{
		{"not-a-date", "Food", "Milk", "", "3.00", "2", "Count", "alice"},
		{"2023-01-15", "Food", "Milk", "", "abc", "2", "Count", "alice"},
		{"2023-01-15", "Food", "Milk", "", "3.00", "x", "Count", "alice"},
	}
	for i, row := range bads {
		if _, err := RecordFromRow(row, "User1"); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUnitsExtendsDefaults(t *testing.T) {
	tbl := Table{
		rec(NewDate(2023, 1, 1), "Food", "Bread", "alice", "2.00", "1", "Loaf"),
		rec(NewDate(2023, 1, 2), "Food", "Milk", "alice", "1.00", "1", "Liter"),
	}
	units := tbl.Units()
	if len(units) != 4 || units[0] != "Kg" || units[3] != "Loaf" {
		t.Fatalf("unexpected units: %v", units)
	}
}
