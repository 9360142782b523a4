package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when a record is logged without one.
const DefaultCategory = "Uncategorized"

// DefaultUnits is the built-in unit set; users can extend it freely.
var DefaultUnits = []string{"Kg", "Liter", "Count"}

type (
	Date struct {
		time.Time
	}

	// Record is one logged purchase. Every record belongs to exactly one User.
	Record struct {
		Date      Date
		Category  string
		Item      string
		Shop      string
		PricePaid decimal.Decimal
		Quantity  decimal.Decimal
		Unit      string
		User      string
	}

	// Table is the full multi-user collection of records as persisted.
	Table []Record
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrNegativePrice    = errors.New("price paid cannot be negative")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrFractionalCount  = errors.New("quantity must be integral for count-style units")
	ErrEmptyUser        = errors.New("empty user")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the persisted YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the persisted YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the numeric calendar month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsContinuousUnit reports whether quantities in this unit are fractional.
// Kg and Liter are continuous; Count and user-defined units are discrete.
func IsContinuousUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg", "liter":
		return true
	}
	return false
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.PricePaid.IsNegative() {
		return ErrNegativePrice
	}
	if r.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}
	if !IsContinuousUnit(r.Unit) && !r.Quantity.Equal(r.Quantity.Truncate(0)) {
		return ErrFractionalCount
	}
	if strings.TrimSpace(r.User) == "" {
		return ErrEmptyUser
	}
	return nil
}

// Normalize trims free-text fields and applies defaults for category and unit.
func (r Record) Normalize() Record {
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	r.Item = strings.TrimSpace(r.Item)
	r.Shop = strings.TrimSpace(r.Shop)
	r.Unit = strings.TrimSpace(r.Unit)
	if r.Unit == "" {
		r.Unit = "Count"
	}
	r.User = strings.TrimSpace(r.User)
	return r
}

// Units returns the built-in units plus any unit appearing in the table,
// deduplicated while preserving first-seen order.
func (t Table) Units() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(DefaultUnits))
	for _, u := range DefaultUnits {
		seen[u] = struct{}{}
		out = append(out, u)
	}
	for _, r := range t {
		u := strings.TrimSpace(r.Unit)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Categories returns the distinct categories in the table in first-seen order.
func (t Table) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t {
		c := strings.TrimSpace(r.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
