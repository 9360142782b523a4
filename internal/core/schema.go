package core

// Row codec for the persisted tabular form. Every backend stores the same
// 8 columns in this order, header included.

// Header returns the schema column names in their declared order.
func Header() []string {
	return []string{"Date", "Category", "Item", "Shop", "PricePaid", "Quantity", "QuantityUnit", "User"}
}

// IsHeaderRow reports whether a stored row is the schema header.
func IsHeaderRow(row []string) bool {
	return len(row) > 0 && row[0] == "Date"
}

// Row serializes a record into its persisted string columns.
func (r Record) Row() []string {
	return []string{
		r.Date.String(),
		r.Category,
		r.Item,
		r.Shop,
		FormatPrice(r.PricePaid),
		FormatQuantity(r.Quantity, r.Unit),
		r.Unit,
		r.User,
	}
}

// RecordFromRow parses a persisted row. Short rows are tolerated; a missing
// or empty User column is backfilled with defaultUser so tables written by
// the older single-user version keep loading.
func RecordFromRow(row []string, defaultUser string) (Record, error) {
	col := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	date, err := ParseDate(col(0))
	if err != nil {
		return Record{}, err
	}
	unit := col(6)
	price, err := ParsePrice(col(4))
	if err != nil {
		return Record{}, err
	}
	qty, err := ParseQuantity(col(5), unit)
	if err != nil {
		return Record{}, err
	}

	r := Record{
		Date:      date,
		Category:  col(1),
		Item:      col(2),
		Shop:      col(3),
		PricePaid: price,
		Quantity:  qty,
		Unit:      unit,
		User:      col(7),
	}
	r = r.Normalize()
	if r.User == "" {
		r.User = defaultUser
	}
	return r, nil
}
