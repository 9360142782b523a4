package http

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"spendbook/internal/core"
)

type amountPayload struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type monthPayload struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	MonthName  string          `json:"month_name"`
	Total      string          `json:"total"`
	ByCategory []amountPayload `json:"by_category"`
	ByItem     []amountPayload `json:"by_item"`
	Records    []recordPayload `json:"records"`
}

type yearPayload struct {
	Year       int             `json:"year"`
	Total      string          `json:"total"`
	ByCategory []amountPayload `json:"by_category"`
	ByItem     []amountPayload `json:"by_item"`
	Months     []monthPayload  `json:"months"`
}

type summaryPayload struct {
	Years []yearPayload `json:"years"`
}

type trendPointPayload struct {
	Label           string `json:"label"`
	AvgPricePerUnit string `json:"avg_price_per_unit"`
}

type itemTrendPayload struct {
	Item   string              `json:"item"`
	Points []trendPointPayload `json:"points"`
}

func toCategoryPayloads(in []core.CategoryAmount) []amountPayload {
	out := make([]amountPayload, 0, len(in))
	for _, a := range in {
		out = append(out, amountPayload{Name: a.Name, Amount: core.FormatPrice(a.Amount)})
	}
	return out
}

func toItemPayloads(in []core.ItemAmount) []amountPayload {
	out := make([]amountPayload, 0, len(in))
	for _, a := range in {
		out = append(out, amountPayload{Name: a.Name, Amount: core.FormatPrice(a.Amount)})
	}
	return out
}

func toSummaryPayload(s core.Summary) summaryPayload {
	out := summaryPayload{Years: make([]yearPayload, 0, len(s.Years))}
	for _, y := range s.Years {
		yp := yearPayload{
			Year:       y.Year,
			Total:      core.FormatPrice(y.Total),
			ByCategory: toCategoryPayloads(y.ByCategory),
			ByItem:     toItemPayloads(y.ByItem),
		}
		for _, m := range y.Months {
			yp.Months = append(yp.Months, monthPayload{
				Year:       m.Year,
				Month:      m.Month,
				MonthName:  m.MonthName,
				Total:      core.FormatPrice(m.Total),
				ByCategory: toCategoryPayloads(m.ByCategory),
				ByItem:     toItemPayloads(m.ByItem),
				Records:    toPayloads(m.Records),
			})
		}
		out.Years = append(out.Years, yp)
	}
	return out
}

func toTrendPayloads(in []core.ItemTrend) []itemTrendPayload {
	out := make([]itemTrendPayload, 0, len(in))
	for _, t := range in {
		tp := itemTrendPayload{Item: t.Item}
		for _, p := range t.Points {
			tp.Points = append(tp.Points, trendPointPayload{
				Label:           p.Label(),
				AvgPricePerUnit: p.AvgPricePerUnit.StringFixed(2),
			})
		}
		out = append(out, tp)
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryPayload(sess.Summary()))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

	trends := sess.Trends()
	if item := strings.TrimSpace(r.URL.Query().Get("item")); item != "" {
		for _, t := range trends {
			if t.Item == item {
				writeJSON(w, http.StatusOK, toTrendPayloads([]core.ItemTrend{t}))
				return
			}
		}
		writeError(w, http.StatusNotFound, "no trend data for item")
		return
	}
	writeJSON(w, http.StatusOK, toTrendPayloads(trends))
}

type dashboardPayload struct {
	User       string             `json:"user"`
	Summary    summaryPayload     `json:"summary"`
	Trends     []itemTrendPayload `json:"trends"`
	Units      []string           `json:"units"`
	Categories []string           `json:"categories"`
}

// handleDashboard assembles the summary, trends and taxonomy views in one
// response, computed concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

	var (
		summary core.Summary
		trends  []core.ItemTrend
	)
	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		summary = sess.Summary()
		return nil
	})
	g.Go(func() error {
		trends = sess.Trends()
		return nil
	})
	_ = g.Wait()

	writeJSON(w, http.StatusOK, dashboardPayload{
		User:       sess.User(),
		Summary:    toSummaryPayload(summary),
		Trends:     toTrendPayloads(trends),
		Units:      sess.Units(),
		Categories: sess.Categories(),
	})
}
