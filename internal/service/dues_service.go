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

// DuesService implements the Connect DuesService
type DuesService struct {
	book *ledger.Book
}

// NewDuesService creates a new DuesService over the given ledger.
func NewDuesService(book *ledger.Book) *DuesService {
	return &DuesService{book: book}
}

// GetDues returns the transfers that settle a period.
func (s *DuesService) GetDues(ctx context.Context, req *connect.Request[api.GetDuesRequest]) (*connect.Response[api.GetDuesResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	period, err := parsePeriod("period", req.Msg.Period, s.book.CurrentPeriod())
	if err != nil {
		return nil, connectError("GetDues", err)
	}

	dues, err := s.book.Dues(ctx, period)
	if err != nil {
		return nil, connectError("GetDues", err)
	}

	slog.Debug("Dues computed", "period", period, "dues", len(dues))
	return connect.NewResponse(&api.GetDuesResponse{
		Period: period.Key(),
		Dues:   toAPIDues(dues),
	}), nil
}

// GetStats returns every person's paid, consumed, settled and net amounts.
func (s *DuesService) GetStats(ctx context.Context, req *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	period, err := parsePeriod("period", req.Msg.Period, s.book.CurrentPeriod())
	if err != nil {
		return nil, connectError("GetStats", err)
	}

	stats, err := s.book.Stats(ctx, period)
	if err != nil {
		return nil, connectError("GetStats", err)
	}
	people, err := s.book.People(ctx)
	if err != nil {
		return nil, connectError("GetStats", err)
	}
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}

	out := make([]*api.PersonStats, len(stats))
	for i, st := range stats {
		out[i] = &api.PersonStats{
			PersonID:        st.PersonID,
			Name:            names[st.PersonID],
			Paid:            st.Paid,
			Consumed:        st.Consumed,
			SettledPaid:     st.SettledPaid,
			SettledReceived: st.SettledReceived,
			SettledAmount:   st.SettledAmount,
			Carried:         st.Carried,
			Owes:            st.Owes,
			Owed:            st.Owed,
			Net:             st.Net,
		}
	}

	return connect.NewResponse(&api.GetStatsResponse{Period: period.Key(), Stats: out}), nil
}

// SettleDues records a payment between two people.
func (s *DuesService) SettleDues(ctx context.Context, req *connect.Request[api.SettleDuesRequest]) (*connect.Response[api.SettleDuesResponse], error) {
	userID, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	period, err := parsePeriod("period", req.Msg.Period, models.Period{})
	if err != nil {
		return nil, connectError("SettleDues", err)
	}

	settlement := &models.Settlement{
		Period: period,
		FromID: req.Msg.FromID,
		ToID:   req.Msg.ToID,
		Amount: req.Msg.Amount,
		Note:   req.Msg.Note,
	}
	if err := s.book.RecordSettlement(ctx, userID, settlement); err != nil {
		return nil, connectError("SettleDues", err)
	}

	return connect.NewResponse(&api.SettleDuesResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements returns the settlements recorded against a period.
func (s *DuesService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	period, err := parsePeriod("period", req.Msg.Period, s.book.CurrentPeriod())
	if err != nil {
		return nil, connectError("ListSettlements", err)
	}

	settlements, err := s.book.ListSettlements(ctx, period)
	if err != nil {
		return nil, connectError("ListSettlements", err)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Period: period.Key(), Settlements: out}), nil
}

// DeleteSettlement removes a settlement. Admin only.
func (s *DuesService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	userID, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.book.DeleteSettlement(ctx, userID, req.Msg.ID); err != nil {
		return nil, connectError("DeleteSettlement", err)
	}

	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// DeleteSettlementHistory removes every settlement. Admin only.
func (s *DuesService) DeleteSettlementHistory(ctx context.Context, req *connect.Request[api.DeleteSettlementHistoryRequest]) (*connect.Response[api.DeleteSettlementHistoryResponse], error) {
	userID, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.book.ClearSettlementHistory(ctx, userID)
	if err != nil {
		return nil, connectError("DeleteSettlementHistory", err)
	}

	return connect.NewResponse(&api.DeleteSettlementHistoryResponse{Deleted: detail.Settlements}), nil
}

// RolloverBalances carries a period's closing balances into the next one.
func (s *DuesService) RolloverBalances(ctx context.Context, req *connect.Request[api.RolloverBalancesRequest]) (*connect.Response[api.RolloverBalancesResponse], error) {
	userID, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if req.Msg.From == "" {
		return nil, connectError("RolloverBalances", models.Invalid("from", "is required"))
	}
	from, err := parsePeriod("from", req.Msg.From, models.Period{})
	if err != nil {
		return nil, connectError("RolloverBalances", err)
	}
	to, err := parsePeriod("to", req.Msg.To, models.Period{})
	if err != nil {
		return nil, connectError("RolloverBalances", err)
	}

	rollover, err := s.book.Rollover(ctx, userID, from, to)
	if err != nil {
		return nil, connectError("RolloverBalances", err)
	}

	return connect.NewResponse(&api.RolloverBalancesResponse{Rollover: toAPIRollover(rollover)}), nil
}

// ResetRollover removes the carry-forward into a period. Admin only.
func (s *DuesService) ResetRollover(ctx context.Context, req *connect.Request[api.ResetRolloverRequest]) (*connect.Response[api.ResetRolloverResponse], error) {
	userID, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if req.Msg.Period == "" {
		return nil, connectError("ResetRollover", models.Invalid("period", "is required"))
	}
	period, err := parsePeriod("period", req.Msg.Period, models.Period{})
	if err != nil {
		return nil, connectError("ResetRollover", err)
	}

	rollover, err := s.book.ResetRollover(ctx, userID, period)
	if err != nil {
		return nil, connectError("ResetRollover", err)
	}

	return connect.NewResponse(&api.ResetRolloverResponse{Rollover: toAPIRollover(rollover)}), nil
}

// GetCarryForward returns the balances a period opened with.
func (s *DuesService) GetCarryForward(ctx context.Context, req *connect.Request[api.GetCarryForwardRequest]) (*connect.Response[api.GetCarryForwardResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	if req.Msg.Period == "" {
		return nil, connectError("GetCarryForward", models.Invalid("period", "is required"))
	}
	period, err := parsePeriod("period", req.Msg.Period, models.Period{})
	if err != nil {
		return nil, connectError("GetCarryForward", err)
	}

	rollover, err := s.book.CarryForward(ctx, period)
	if err != nil {
		return nil, connectError("GetCarryForward", err)
	}

	return connect.NewResponse(&api.GetCarryForwardResponse{Rollover: toAPIRollover(rollover)}), nil
}

// ClearDatabase deletes all expenses, settlements and rollovers. Admin only.
func (s *DuesService) ClearDatabase(ctx context.Context, req *connect.Request[api.ClearDatabaseRequest]) (*connect.Response[api.ClearDatabaseResponse], error) {
	userID, err := middleware.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.book.ClearLedger(ctx, userID)
	if err != nil {
		return nil, connectError("ClearDatabase", err)
	}

	return connect.NewResponse(&api.ClearDatabaseResponse{
		Expenses:    detail.Expenses,
		Settlements: detail.Settlements,
		Rollovers:   detail.Rollovers,
	}), nil
}

// ListActivity returns the audit log, newest first. Admin only.
func (s *DuesService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	if _, err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	entries, err := s.book.ListActivity(ctx, req.Msg.Limit)
	if err != nil {
		return nil, connectError("ListActivity", err)
	}

	out := make([]*api.Activity, 0, len(entries))
	for _, e := range entries {
		a, err := toAPIActivity(e)
		if err != nil {
			return nil, connectError("ListActivity", err)
		}
		out = append(out, a)
	}
	return connect.NewResponse(&api.ListActivityResponse{Entries: out}), nil
}
