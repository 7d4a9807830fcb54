package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/duesbook/internal/ledger"
	"github.com/mmynk/duesbook/internal/middleware"
	"github.com/mmynk/duesbook/internal/models"
	"github.com/mmynk/duesbook/pkg/api"
)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	book *ledger.Book
}

// NewExpenseService creates a new ExpenseService over the given ledger.
func NewExpenseService(book *ledger.Book) *ExpenseService {
	return &ExpenseService{book: book}
}

// CreateExpense records a new expense for the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := fromAPIExpense(req.Msg.Expense)
	if err != nil {
		return nil, connectError("CreateExpense", err)
	}
	expense.ID = ""

	if err := s.book.CreateExpense(ctx, userID, expense); err != nil {
		slog.Debug("CreateExpense rejected", "user_id", userID, "error", err)
		return nil, connectError("CreateExpense", err)
	}

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense, including its givers and takers.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := fromAPIExpense(req.Msg.Expense)
	if err != nil {
		return nil, connectError("UpdateExpense", err)
	}
	if expense.ID == "" {
		return nil, connectError("UpdateExpense", models.Invalid("id", "is required"))
	}

	if err := s.book.UpdateExpense(ctx, userID, expense); err != nil {
		return nil, connectError("UpdateExpense", err)
	}

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense retrieves a single expense.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	expense, err := s.book.GetExpense(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError("GetExpense", err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense. Admin only.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.book.DeleteExpense(ctx, userID, req.Msg.ID); err != nil {
		return nil, connectError("DeleteExpense", err)
	}

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns the expenses of a period, optionally for one category.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	period, err := parsePeriod("period", req.Msg.Period, s.book.CurrentPeriod())
	if err != nil {
		return nil, connectError("ListExpenses", err)
	}

	expenses, err := s.book.ListExpenses(ctx, models.ExpenseFilter{
		Period:   period,
		Category: models.Category(req.Msg.Category),
	})
	if err != nil {
		return nil, connectError("ListExpenses", err)
	}

	return connect.NewResponse(&api.ListExpensesResponse{
		Period:   period.Key(),
		Expenses: toAPIExpenses(expenses),
	}), nil
}

// GetSummary totals a period's expenses by category and by payer.
func (s *ExpenseService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	period, err := parsePeriod("period", req.Msg.Period, s.book.CurrentPeriod())
	if err != nil {
		return nil, connectError("GetSummary", err)
	}

	summary, err := s.book.Summary(ctx, period)
	if err != nil {
		return nil, connectError("GetSummary", err)
	}

	resp := &api.GetSummaryResponse{
		Period:     period.Key(),
		Total:      summary.Total,
		Count:      summary.Count,
		ByCategory: make([]api.CategoryTotal, len(summary.ByCategory)),
		ByPayer:    make([]api.PayerTotal, len(summary.ByPayer)),
	}
	for i, c := range summary.ByCategory {
		resp.ByCategory[i] = api.CategoryTotal{Category: string(c.Category), Total: c.Total, Count: c.Count}
	}
	for i, p := range summary.ByPayer {
		resp.ByPayer[i] = api.PayerTotal{PersonID: p.PersonID, Total: p.Total, Count: p.Count}
	}

	return connect.NewResponse(resp), nil
}
