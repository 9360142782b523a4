package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendbook/internal/core"
	"spendbook/internal/session"
)

// recordPayload is the wire form of a record. Price and quantity travel as
// strings so the decimal values keep their scale.
type recordPayload struct {
	Date         string `json:"date"`
	Category     string `json:"category"`
	Item         string `json:"item"`
	Shop         string `json:"shop"`
	PricePaid    string `json:"price_paid"`
	Quantity     string `json:"quantity"`
	QuantityUnit string `json:"quantity_unit"`
	User         string `json:"user"`
}

func toPayload(r core.Record) recordPayload {
	return recordPayload{
		Date:         r.Date.String(),
		Category:     r.Category,
		Item:         r.Item,
		Shop:         r.Shop,
		PricePaid:    core.FormatPrice(r.PricePaid),
		Quantity:     core.FormatQuantity(r.Quantity, r.Unit),
		QuantityUnit: r.Unit,
		User:         r.User,
	}
}

func (p recordPayload) toRecord() (core.Record, error) {
	d, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Record{}, err
	}
	price, err := core.ParsePrice(p.PricePaid)
	if err != nil {
		return core.Record{}, err
	}
	qty, err := core.ParseQuantity(p.Quantity, p.QuantityUnit)
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		Date:      d,
		Category:  p.Category,
		Item:      p.Item,
		Shop:      p.Shop,
		PricePaid: price,
		Quantity:  qty,
		Unit:      p.QuantityUnit,
		User:      p.User,
	}, nil
}

func toPayloads(t core.Table) []recordPayload {
	out := make([]recordPayload, 0, len(t))
	for _, r := range t {
		out = append(out, toPayload(r))
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// sessionFor resolves the acting user's session from the request.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		writeError(w, http.StatusUnprocessableEntity, "user parameter is required")
		return nil, false
	}
	sess, ok := s.sessions.Get(user)
	if !ok {
		writeError(w, http.StatusNotFound, "no session for user, POST /session first")
		return nil, false
	}
	return sess, true
}

type sessionResponse struct {
	User    string `json:"user"`
	Rows    int    `json:"rows"`
	CanUndo bool   `json:"can_undo"`
	CanRedo bool   `json:"can_redo"`
}

func sessionState(sess *session.Session) sessionResponse {
	return sessionResponse{
		User:    sess.User(),
		Rows:    len(sess.Records()),
		CanUndo: sess.CanUndo(),
		CanRedo: sess.CanRedo(),
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.sessions.Start(r.Context(), req.User)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeError(w, http.StatusUnprocessableEntity, "username must not be empty")
			return
		}
		slog.ErrorContext(r.Context(), "Session start failed", "error", err, "user", req.User)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, sessionState(sess))
}

type recordsResponse struct {
	Records []recordPayload `json:"records"`
	CanUndo bool            `json:"can_undo"`
	CanRedo bool            `json:"can_redo"`
}

func recordsState(sess *session.Session) recordsResponse {
	return recordsResponse{
		Records: toPayloads(sess.Records()),
		CanUndo: sess.CanUndo(),
		CanRedo: sess.CanRedo(),
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, recordsState(sess))
}

// decodeRecord reads one record payload from the body and converts it.
func decodeRecord(w http.ResponseWriter, r *http.Request) (core.Record, bool) {
	var p recordPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return core.Record{}, false
	}
	rec, err := p.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return core.Record{}, false
	}
	return rec, true
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if err := sess.Add(rec); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, recordsState(sess))
}

// pathIndex parses the {index} path segment.
func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return i, true
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if err := sess.UpdateAt(i, rec); err != nil {
		if errors.Is(err, session.ErrIndexOutOfRange) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recordsState(sess))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteAt(i); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recordsState(sess))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	sess.Undo()
	writeJSON(w, http.StatusOK, recordsState(sess))
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	sess.Redo()
	writeJSON(w, http.StatusOK, recordsState(sess))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "1"

	if err := sess.Save(r.Context(), force); err != nil {
		if errors.Is(err, session.ErrPartitionShrunk) {
			writeError(w, http.StatusConflict, "partition shrank past the guard threshold, retry with force=1 to confirm")
			return
		}
		slog.ErrorContext(r.Context(), "Save failed", "error", err, "user", sess.User())
		writeError(w, http.StatusInternalServerError, "failed to save table")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"saved": true, "rows": len(sess.Records())})
}
