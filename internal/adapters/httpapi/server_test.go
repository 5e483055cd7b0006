package httpapi_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopfloor/internal/adapters/httpapi"
	"github.com/example/shopfloor/internal/adapters/sqlite"
	"github.com/example/shopfloor/internal/app"
	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/db"
	"github.com/example/shopfloor/internal/ports/primary"
)

type testServer struct {
	*httptest.Server
	clock         *clock.Fake
	manufacturing *app.ManufacturingServiceImpl
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	testDB.SetMaxOpenConns(1)
	t.Cleanup(func() { testDB.Close() })

	_, err = testDB.Exec(db.GetSchemaSQL())
	require.NoError(t, err)
	require.NoError(t, db.SeedFixtures(testDB))

	clk := clock.NewFake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	orderRepo := sqlite.NewManufacturingOrderRepository(testDB)
	workOrderRepo := sqlite.NewWorkOrderRepository(testDB)
	events := sqlite.NewEventWriterAdapter(sqlite.NewEventRepository(testDB))

	mfg := app.NewManufacturingService(orderRepo, workOrderRepo, sqlite.NewBOMRepository(testDB), sqlite.NewProductRepository(testDB), events, clk, nil)
	wos := app.NewWorkOrderService(workOrderRepo, orderRepo, events, clk, nil)
	stock := app.NewStockService(sqlite.NewStockLedgerRepository(testDB))

	srv := httptest.NewServer(httpapi.NewServer(mfg, wos, stock, nil).Handler())
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, clock: clk, manufacturing: mfg}
}

func (s *testServer) confirm(t *testing.T, orderID string) {
	t.Helper()
	_, err := s.manufacturing.ConfirmOrder(context.Background(), primary.ConfirmOrderRequest{OrderID: orderID})
	require.NoError(t, err)
}

func post(t *testing.T, url, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_Healthz(t *testing.T) {
	s := setupServer(t)

	resp, err := http.Get(s.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(httpapi.HeaderRequestID))
}

func TestServer_GetOrder(t *testing.T) {
	s := setupServer(t)
	s.confirm(t, "MO-001")

	resp, err := http.Get(s.URL + "/api/manufacturing-orders/MO-001/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "MO-001", body["mo_id"])
	assert.Equal(t, "CONFIRMED", body["status"])
	assert.Len(t, body["work_orders"], 3)
}

func TestServer_NotFound(t *testing.T) {
	s := setupServer(t)

	resp, err := http.Get(s.URL + "/api/work-orders/WO-404/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeBody(t, resp)["code"])
}

func TestServer_InvalidTransitionIsConflict(t *testing.T) {
	s := setupServer(t)
	s.confirm(t, "MO-001")

	resp := post(t, s.URL+"/api/work-orders/WO-001/pause/", `{}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_transition", body["code"])
	assert.Contains(t, body["error"], "WO-001")
}

func TestServer_MalformedBody(t *testing.T) {
	s := setupServer(t)
	s.confirm(t, "MO-001")

	resp := post(t, s.URL+"/api/work-orders/WO-001/start/", `{"operator":`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", decodeBody(t, resp)["code"])
}

func TestServer_StartUsesOperatorHeader(t *testing.T) {
	s := setupServer(t)
	s.confirm(t, "MO-001")

	resp := post(t, s.URL+"/api/work-orders/WO-001/start/", "", map[string]string{httpapi.HeaderOperatorID: "op-42"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	wo := body["wo"].(map[string]any)
	mo := body["mo"].(map[string]any)
	assert.Equal(t, "op-42", wo["operator"])
	assert.Equal(t, "IN_PROGRESS", wo["status"])
	assert.Equal(t, "IN_PROGRESS", mo["status"])
	assert.Equal(t, "Work order WO-001 started", body["message"])
}

func TestServer_ListWorkOrdersFilters(t *testing.T) {
	s := setupServer(t)
	s.confirm(t, "MO-001")
	post(t, s.URL+"/api/work-orders/WO-001/start/", `{"operator":"op-1"}`, nil)

	resp, err := http.Get(s.URL + "/api/work-orders/?mo=MO-001&status=PENDING")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)

	bad, err := http.Get(s.URL + "/api/work-orders/?limit=-1")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
