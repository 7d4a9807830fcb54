package service

import (
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/duesbook/internal/calculator"
	"github.com/mmynk/duesbook/internal/models"
	"github.com/mmynk/duesbook/pkg/api"
)

const (
	dateLayout   = "2006-01-02"
	periodLayout = "2006-01"
)

// connectError maps ledger errors onto Connect codes. Errors that already
// carry a code pass through unchanged.
func connectError(op string, err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, models.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}

// parsePeriod reads a "YYYY-MM" period. An empty string yields fallback.
func parsePeriod(field, value string, fallback models.Period) (models.Period, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(periodLayout, value)
	if err != nil {
		return models.Period{}, models.Invalid(field, "expected YYYY-MM, got %q", value)
	}
	return models.PeriodOf(t), nil
}

func toAPIPerson(p *models.Person) *api.Person {
	return &api.Person{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

func toAPIShares(shares []models.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{PersonID: s.PersonID, Amount: s.Amount}
	}
	return out
}

func fromAPIShares(shares []api.Share) []models.Share {
	out := make([]models.Share, len(shares))
	for i, s := range shares {
		out[i] = models.Share{PersonID: s.PersonID, Amount: s.Amount}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:        e.ID,
		Date:      e.Date.Format(dateLayout),
		Amount:    e.Amount,
		Category:  string(e.Category),
		Reason:    e.Reason,
		SplitType: string(e.SplitType),
		Givers:    toAPIShares(e.Givers),
		Takers:    toAPIShares(e.Takers),
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromAPIExpense(e *api.Expense) (*models.Expense, error) {
	if e == nil {
		return nil, models.Invalid("expense", "is required")
	}
	date, err := time.Parse(dateLayout, e.Date)
	if err != nil {
		return nil, models.Invalid("date", "expected YYYY-MM-DD, got %q", e.Date)
	}
	return &models.Expense{
		ID:        e.ID,
		Date:      date,
		Amount:    e.Amount,
		Category:  models.Category(e.Category),
		Reason:    e.Reason,
		SplitType: models.SplitType(e.SplitType),
		Givers:    fromAPIShares(e.Givers),
		Takers:    fromAPIShares(e.Takers),
	}, nil
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		Period:    s.Period.Key(),
		FromID:    s.FromID,
		ToID:      s.ToID,
		Amount:    s.Amount,
		Note:      s.Note,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func toAPIDues(dues []calculator.Due) []api.Due {
	out := make([]api.Due, len(dues))
	for i, d := range dues {
		out[i] = api.Due{From: d.From, To: d.To, Amount: d.Amount}
	}
	return out
}

func toAPIRollover(r *models.Rollover) *api.Rollover {
	entries := make([]api.CarryEntry, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = api.CarryEntry{PersonID: e.PersonID, Amount: e.Amount}
	}
	return &api.Rollover{
		ID:        r.ID,
		From:      r.From.Key(),
		To:        r.To.Key(),
		Entries:   entries,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

func toAPIActivity(a *models.Activity) (*api.Activity, error) {
	kind, payload, err := models.EncodeDetail(a.Detail)
	if err != nil {
		return nil, err
	}
	return &api.Activity{
		ID:      a.ID,
		Action:  string(a.Action),
		ActorID: a.ActorID,
		At:      a.At,
		Kind:    string(kind),
		Detail:  payload,
	}, nil
}
