package core

import "testing"

func TestBuildSummaryTotals(t *testing.T) {
	tbl := Table{
		rec(NewDate(2023, 1, 15), "Food", "Milk", "alice", "10.00", "1", "Count"),
		rec(NewDate(2023, 1, 20), "Food", "Bread", "alice", "5.00", "1", "Count"),
		rec(NewDate(2023, 2, 1), "Transport", "Ticket", "alice", "20.00", "1", "Count"),
	}
	s := BuildSummary(tbl)

	if len(s.Years) != 1 || s.Years[0].Year != 2023 {
		t.Fatalf("unexpected years: %+v", s.Years)
	}
	year := s.Years[0]
	if FormatPrice(year.Total) != "35.00" {
		t.Fatalf("year total = %s, want 35.00", FormatPrice(year.Total))
	}

	if len(year.Months) != 2 || year.Months[0].Month != 1 || year.Months[1].Month != 2 {
		t.Fatalf("unexpected months: %+v", year.Months)
	}
	jan := year.Months[0]
	if FormatPrice(jan.Total) != "15.00" {
		t.Fatalf("january total = %s, want 15.00", FormatPrice(jan.Total))
	}
	if len(jan.ByCategory) != 1 || jan.ByCategory[0].Name != "Food" || FormatPrice(jan.ByCategory[0].Amount) != "15.00" {
		t.Fatalf("unexpected january categories: %+v", jan.ByCategory)
	}
	if len(jan.Records) != 2 {
		t.Fatalf("expected raw rows in month rollup, got %d", len(jan.Records))
	}
}

func TestBuildSummaryEmptyPartition(t *testing.T) {
	s := BuildSummary(Table{})
	if len(s.Years) != 0 {
		t.Fatalf("empty partition must yield empty summary, got %+v", s)
	}
	if pts := PriceTrend(Table{}, "Milk"); pts != nil {
		t.Fatalf("empty partition must yield nil trend, got %+v", pts)
	}
}

func TestMonthsSortCalendarNotAlphabetical(t *testing.T) {
	// "December" sorts before "February" alphabetically; the rollup must use
	// numeric months instead.
	tbl := Table{
		rec(NewDate(2023, 12, 5), "Food", "Milk", "alice", "1.00", "1", "Count"),
		rec(NewDate(2023, 2, 5), "Food", "Milk", "alice", "1.00", "1", "Count"),
	}
	s := BuildSummary(tbl)
	months := s.Years[0].Months
	if months[0].MonthName != "February" || months[1].MonthName != "December" {
		t.Fatalf("months out of calendar order: %+v", months)
	}
}

func TestYearsSortAscending(t *testing.T) {
	tbl := Table{
		rec(NewDate(2024, 1, 1), "Food", "Milk", "alice", "1.00", "1", "Count"),
		rec(NewDate(2022, 1, 1), "Food", "Milk", "alice", "1.00", "1", "Count"),
	}
	s := BuildSummary(tbl)
	if s.Years[0].Year != 2022 || s.Years[1].Year != 2024 {
		t.Fatalf("years out of order: %+v", s.Years)
	}
}

func TestPriceTrendAveragesWithinMonth(t *testing.T) {
	tbl := Table{
		rec(NewDate(2023, 1, 10), "Food", "Milk", "alice", "3.00", "2", "Count"),
		rec(NewDate(2023, 1, 20), "Food", "Milk", "alice", "4.00", "2", "Count"),
	}
	pts := PriceTrend(tbl, "Milk")
	if len(pts) != 1 {
		t.Fatalf("expected one bucket, got %d", len(pts))
	}
	if pts[0].Label() != "2023-01" {
		t.Fatalf("unexpected label: %s", pts[0].Label())
	}
	// ((3.00/2)+(4.00/2))/2 = 1.75
	if pts[0].AvgPricePerUnit.StringFixed(2) != "1.75" {
		t.Fatalf("expected 1.75, got %s", pts[0].AvgPricePerUnit.StringFixed(2))
	}
}

func TestPriceTrendChronologicalAcrossYears(t *testing.T) {
	tbl := Table{
		rec(NewDate(2024, 2, 1), "Food", "Milk", "alice", "4.00", "2", "Count"),
		rec(NewDate(2023, 11, 1), "Food", "Milk", "alice", "3.00", "2", "Count"),
		rec(NewDate(2023, 3, 1), "Food", "Milk", "alice", "2.00", "2", "Count"),
	}
	pts := PriceTrend(tbl, "Milk")
	if len(pts) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(pts))
	}
	labels := []string{pts[0].Label(), pts[1].Label(), pts[2].Label()}
	if labels[0] != "2023-03" || labels[1] != "2023-11" || labels[2] != "2024-02" {
		t.Fatalf("buckets out of chronological order: %v", labels)
	}
}

func TestPriceTrendZeroQuantityGuard(t *testing.T) {
	tbl := Table{
		rec(NewDate(2023, 1, 10), "Food", "Sample", "alice", "5.00", "0", "Count"),
	}
	pts := PriceTrend(tbl, "Sample")
	if len(pts) != 1 || pts[0].AvgPricePerUnit.StringFixed(2) != "5.00" {
		t.Fatalf("zero quantity should divide by 1: %+v", pts)
	}
}

func TestPriceTrendsCoverAllItems(t *testing.T) {
	tbl := Table{
		rec(NewDate(2023, 1, 10), "Food", "Milk", "alice", "3.00", "2", "Count"),
		rec(NewDate(2023, 1, 11), "Food", "Bread", "alice", "2.00", "1", "Count"),
	}
	trends := PriceTrends(tbl)
	if len(trends) != 2 || trends[0].Item != "Milk" || trends[1].Item != "Bread" {
		t.Fatalf("unexpected trends: %+v", trends)
	}
}
