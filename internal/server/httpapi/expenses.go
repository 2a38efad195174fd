package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

func parseFilter(r *http.Request) (models.ExpenseFilter, error) {
	q := r.URL.Query()
	f := models.ExpenseFilter{Category: q.Get("category")}

	parse := func(field string) (*time.Time, error) {
		v := q.Get(field)
		if v == "" {
			return nil, nil
		}
		t, err := timex.ParseDate(v)
		if err != nil {
			return nil, models.NewValidationError(field, "Invalid date")
		}
		return &t, nil
	}

	var err error
	if f.Start, err = parse("startDate"); err != nil {
		return f, err
	}
	if f.End, err = parse("endDate"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Expenses.List(r.Context(), userID(r.Context()), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var in models.NewExpense
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := s.svc.Expenses.Create(r.Context(), userID(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p models.ExpensePatch
	if !decodeJSON(w, r, &p) {
		return
	}
	e, err := s.svc.Expenses.Update(r.Context(), userID(r.Context()), id, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Expenses.Delete(r.Context(), userID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Expenses.Stats(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
