package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/duesbook/pkg/api"
)

// DuesServiceName is the fully-qualified name of the DuesService.
const DuesServiceName = "duesbook.v1.DuesService"

// Procedure paths of the DuesService RPCs.
const (
	DuesServiceGetDuesProcedure                 = "/duesbook.v1.DuesService/GetDues"
	DuesServiceGetStatsProcedure                = "/duesbook.v1.DuesService/GetStats"
	DuesServiceSettleDuesProcedure              = "/duesbook.v1.DuesService/SettleDues"
	DuesServiceListSettlementsProcedure         = "/duesbook.v1.DuesService/ListSettlements"
	DuesServiceDeleteSettlementProcedure        = "/duesbook.v1.DuesService/DeleteSettlement"
	DuesServiceDeleteSettlementHistoryProcedure = "/duesbook.v1.DuesService/DeleteSettlementHistory"
	DuesServiceRolloverBalancesProcedure        = "/duesbook.v1.DuesService/RolloverBalances"
	DuesServiceResetRolloverProcedure           = "/duesbook.v1.DuesService/ResetRollover"
	DuesServiceGetCarryForwardProcedure         = "/duesbook.v1.DuesService/GetCarryForward"
	DuesServiceClearDatabaseProcedure           = "/duesbook.v1.DuesService/ClearDatabase"
	DuesServiceListActivityProcedure            = "/duesbook.v1.DuesService/ListActivity"
)

// DuesServiceClient is a client for the duesbook.v1.DuesService service.
type DuesServiceClient interface {
	GetDues(context.Context, *connect.Request[api.GetDuesRequest]) (*connect.Response[api.GetDuesResponse], error)
	GetStats(context.Context, *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error)
	SettleDues(context.Context, *connect.Request[api.SettleDuesRequest]) (*connect.Response[api.SettleDuesResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	DeleteSettlementHistory(context.Context, *connect.Request[api.DeleteSettlementHistoryRequest]) (*connect.Response[api.DeleteSettlementHistoryResponse], error)
	RolloverBalances(context.Context, *connect.Request[api.RolloverBalancesRequest]) (*connect.Response[api.RolloverBalancesResponse], error)
	ResetRollover(context.Context, *connect.Request[api.ResetRolloverRequest]) (*connect.Response[api.ResetRolloverResponse], error)
	GetCarryForward(context.Context, *connect.Request[api.GetCarryForwardRequest]) (*connect.Response[api.GetCarryForwardResponse], error)
	ClearDatabase(context.Context, *connect.Request[api.ClearDatabaseRequest]) (*connect.Response[api.ClearDatabaseResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
}

// NewDuesServiceClient constructs a client for the duesbook.v1.DuesService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewDuesServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DuesServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &duesServiceClient{
		getDues:                 connect.NewClient[api.GetDuesRequest, api.GetDuesResponse](httpClient, baseURL+DuesServiceGetDuesProcedure, opts...),
		getStats:                connect.NewClient[api.GetStatsRequest, api.GetStatsResponse](httpClient, baseURL+DuesServiceGetStatsProcedure, opts...),
		settleDues:              connect.NewClient[api.SettleDuesRequest, api.SettleDuesResponse](httpClient, baseURL+DuesServiceSettleDuesProcedure, opts...),
		listSettlements:         connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+DuesServiceListSettlementsProcedure, opts...),
		deleteSettlement:        connect.NewClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](httpClient, baseURL+DuesServiceDeleteSettlementProcedure, opts...),
		deleteSettlementHistory: connect.NewClient[api.DeleteSettlementHistoryRequest, api.DeleteSettlementHistoryResponse](httpClient, baseURL+DuesServiceDeleteSettlementHistoryProcedure, opts...),
		rolloverBalances:        connect.NewClient[api.RolloverBalancesRequest, api.RolloverBalancesResponse](httpClient, baseURL+DuesServiceRolloverBalancesProcedure, opts...),
		resetRollover:           connect.NewClient[api.ResetRolloverRequest, api.ResetRolloverResponse](httpClient, baseURL+DuesServiceResetRolloverProcedure, opts...),
		getCarryForward:         connect.NewClient[api.GetCarryForwardRequest, api.GetCarryForwardResponse](httpClient, baseURL+DuesServiceGetCarryForwardProcedure, opts...),
		clearDatabase:           connect.NewClient[api.ClearDatabaseRequest, api.ClearDatabaseResponse](httpClient, baseURL+DuesServiceClearDatabaseProcedure, opts...),
		listActivity:            connect.NewClient[api.ListActivityRequest, api.ListActivityResponse](httpClient, baseURL+DuesServiceListActivityProcedure, opts...),
	}
}

type duesServiceClient struct {
	getDues                 *connect.Client[api.GetDuesRequest, api.GetDuesResponse]
	getStats                *connect.Client[api.GetStatsRequest, api.GetStatsResponse]
	settleDues              *connect.Client[api.SettleDuesRequest, api.SettleDuesResponse]
	listSettlements         *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	deleteSettlement        *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
	deleteSettlementHistory *connect.Client[api.DeleteSettlementHistoryRequest, api.DeleteSettlementHistoryResponse]
	rolloverBalances        *connect.Client[api.RolloverBalancesRequest, api.RolloverBalancesResponse]
	resetRollover           *connect.Client[api.ResetRolloverRequest, api.ResetRolloverResponse]
	getCarryForward         *connect.Client[api.GetCarryForwardRequest, api.GetCarryForwardResponse]
	clearDatabase           *connect.Client[api.ClearDatabaseRequest, api.ClearDatabaseResponse]
	listActivity            *connect.Client[api.ListActivityRequest, api.ListActivityResponse]
}

func (c *duesServiceClient) GetDues(ctx context.Context, req *connect.Request[api.GetDuesRequest]) (*connect.Response[api.GetDuesResponse], error) {
	return c.getDues.CallUnary(ctx, req)
}

func (c *duesServiceClient) GetStats(ctx context.Context, req *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error) {
	return c.getStats.CallUnary(ctx, req)
}

func (c *duesServiceClient) SettleDues(ctx context.Context, req *connect.Request[api.SettleDuesRequest]) (*connect.Response[api.SettleDuesResponse], error) {
	return c.settleDues.CallUnary(ctx, req)
}

func (c *duesServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *duesServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *duesServiceClient) DeleteSettlementHistory(ctx context.Context, req *connect.Request[api.DeleteSettlementHistoryRequest]) (*connect.Response[api.DeleteSettlementHistoryResponse], error) {
	return c.deleteSettlementHistory.CallUnary(ctx, req)
}

func (c *duesServiceClient) RolloverBalances(ctx context.Context, req *connect.Request[api.RolloverBalancesRequest]) (*connect.Response[api.RolloverBalancesResponse], error) {
	return c.rolloverBalances.CallUnary(ctx, req)
}

func (c *duesServiceClient) ResetRollover(ctx context.Context, req *connect.Request[api.ResetRolloverRequest]) (*connect.Response[api.ResetRolloverResponse], error) {
	return c.resetRollover.CallUnary(ctx, req)
}

func (c *duesServiceClient) GetCarryForward(ctx context.Context, req *connect.Request[api.GetCarryForwardRequest]) (*connect.Response[api.GetCarryForwardResponse], error) {
	return c.getCarryForward.CallUnary(ctx, req)
}

func (c *duesServiceClient) ClearDatabase(ctx context.Context, req *connect.Request[api.ClearDatabaseRequest]) (*connect.Response[api.ClearDatabaseResponse], error) {
	return c.clearDatabase.CallUnary(ctx, req)
}

func (c *duesServiceClient) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

// DuesServiceHandler is implemented by the server side of duesbook.v1.DuesService.
// DuesService serves dues, settlements, rollovers and administration.
type DuesServiceHandler interface {
	GetDues(context.Context, *connect.Request[api.GetDuesRequest]) (*connect.Response[api.GetDuesResponse], error)
	GetStats(context.Context, *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error)
	SettleDues(context.Context, *connect.Request[api.SettleDuesRequest]) (*connect.Response[api.SettleDuesResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	DeleteSettlementHistory(context.Context, *connect.Request[api.DeleteSettlementHistoryRequest]) (*connect.Response[api.DeleteSettlementHistoryResponse], error)
	RolloverBalances(context.Context, *connect.Request[api.RolloverBalancesRequest]) (*connect.Response[api.RolloverBalancesResponse], error)
	ResetRollover(context.Context, *connect.Request[api.ResetRolloverRequest]) (*connect.Response[api.ResetRolloverResponse], error)
	GetCarryForward(context.Context, *connect.Request[api.GetCarryForwardRequest]) (*connect.Response[api.GetCarryForwardResponse], error)
	ClearDatabase(context.Context, *connect.Request[api.ClearDatabaseRequest]) (*connect.Response[api.ClearDatabaseResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
}

// NewDuesServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDuesServiceHandler(svc DuesServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	getDuesHandler := connect.NewUnaryHandler(DuesServiceGetDuesProcedure, svc.GetDues, opts...)
	getStatsHandler := connect.NewUnaryHandler(DuesServiceGetStatsProcedure, svc.GetStats, opts...)
	settleDuesHandler := connect.NewUnaryHandler(DuesServiceSettleDuesProcedure, svc.SettleDues, opts...)
	listSettlementsHandler := connect.NewUnaryHandler(DuesServiceListSettlementsProcedure, svc.ListSettlements, opts...)
	deleteSettlementHandler := connect.NewUnaryHandler(DuesServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...)
	deleteSettlementHistoryHandler := connect.NewUnaryHandler(DuesServiceDeleteSettlementHistoryProcedure, svc.DeleteSettlementHistory, opts...)
	rolloverBalancesHandler := connect.NewUnaryHandler(DuesServiceRolloverBalancesProcedure, svc.RolloverBalances, opts...)
	resetRolloverHandler := connect.NewUnaryHandler(DuesServiceResetRolloverProcedure, svc.ResetRollover, opts...)
	getCarryForwardHandler := connect.NewUnaryHandler(DuesServiceGetCarryForwardProcedure, svc.GetCarryForward, opts...)
	clearDatabaseHandler := connect.NewUnaryHandler(DuesServiceClearDatabaseProcedure, svc.ClearDatabase, opts...)
	listActivityHandler := connect.NewUnaryHandler(DuesServiceListActivityProcedure, svc.ListActivity, opts...)
	return "/duesbook.v1.DuesService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DuesServiceGetDuesProcedure:
			getDuesHandler.ServeHTTP(w, r)
		case DuesServiceGetStatsProcedure:
			getStatsHandler.ServeHTTP(w, r)
		case DuesServiceSettleDuesProcedure:
			settleDuesHandler.ServeHTTP(w, r)
		case DuesServiceListSettlementsProcedure:
			listSettlementsHandler.ServeHTTP(w, r)
		case DuesServiceDeleteSettlementProcedure:
			deleteSettlementHandler.ServeHTTP(w, r)
		case DuesServiceDeleteSettlementHistoryProcedure:
			deleteSettlementHistoryHandler.ServeHTTP(w, r)
		case DuesServiceRolloverBalancesProcedure:
			rolloverBalancesHandler.ServeHTTP(w, r)
		case DuesServiceResetRolloverProcedure:
			resetRolloverHandler.ServeHTTP(w, r)
		case DuesServiceGetCarryForwardProcedure:
			getCarryForwardHandler.ServeHTTP(w, r)
		case DuesServiceClearDatabaseProcedure:
			clearDatabaseHandler.ServeHTTP(w, r)
		case DuesServiceListActivityProcedure:
			listActivityHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
