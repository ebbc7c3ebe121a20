package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

var apiStart = time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

// newTestRouter wires real handlers against a fresh orchestrator, the
// same way the daemon does.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	env, err := world.NewEnvironment(70, 50, apiStart)
	require.NoError(t, err)

	plant, err := network.NewDepot("PLANT", shared.Position{X: 12, Y: 8}, 0, true, true)
	require.NoError(t, err)
	require.NoError(t, env.AddDepot(plant))

	v, err := fleet.NewVehicle("TD01", fleet.TypeTD, shared.Position{X: 12, Y: 8}, 5, 25, 25, 80)
	require.NoError(t, err)
	require.NoError(t, env.AddVehicle(v))

	logger := common.NewNoOpLogger()
	factory := func(int, int, routing.BlockageOracle) routing.PathPlanner { return nil }
	planner := planning.NewService(planning.DefaultConfig(), factory, logger)
	executor := simulation.NewExecutor(nil, logger)
	orch := simulation.NewOrchestrator(env, simulation.NewEventQueue(), planner, executor,
		shared.NewMockClock(apiStart), simulation.Options{SpeedMs: 1000}, logger)

	med := common.NewMediator()
	require.NoError(t, simulation.RegisterHandlers(med, orch))
	h := NewHandlers(med, logger)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/vehicles", h.Vehicles).Methods(http.MethodGet)
	r.HandleFunc("/vehicles/{id}", h.Vehicle).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.Orders).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/simulation/status", h.SimulationStatus).Methods(http.MethodGet)
	r.HandleFunc("/simulation/pause", h.PauseSimulation).Methods(http.MethodPost)
	r.HandleFunc("/simulation/speed", h.GetSpeed).Methods(http.MethodGet)
	r.HandleFunc("/simulation/speed", h.SetSpeed).Methods(http.MethodPost)
	r.HandleFunc("/vehicle/breakdown", h.ReportBreakdown).Methods(http.MethodPost)
	r.HandleFunc("/vehicle/repair", h.RepairVehicle).Methods(http.MethodPost)
	return r
}

func doRequest(t *testing.T, r *mux.Router, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return rec, env
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
}

func TestVehicles_ListAndLookup(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodGet, "/vehicles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var vehicles []simulation.VehicleView
	require.NoError(t, json.Unmarshal(raw, &vehicles))
	require.Len(t, vehicles, 1)
	assert.Equal(t, "TD01", vehicles[0].ID)

	rec, env = doRequest(t, r, http.MethodGet, "/vehicles/TD01", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doRequest(t, r, http.MethodGet, "/vehicles/TX99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "TX99")
}

func TestCreateOrder_ShowsUpInStatus(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodPost, "/orders",
		`{"clientId":"c-1","x":30,"y":20,"amountM3":5,"dueHours":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var result simulation.OrderResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.NotEmpty(t, result.OrderID)

	rec, env = doRequest(t, r, http.MethodGet, "/simulation/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	raw, err = json.Marshal(env.Data)
	require.NoError(t, err)
	var status simulation.StatusResult
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, 1, status.PendingOrders)
	assert.Equal(t, string(simulation.StateCreated), status.State)
}

func TestCreateOrder_RejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := doRequest(t, r, http.MethodPost, "/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := doRequest(t, r, http.MethodPost, "/orders",
		`{"clientId":"c-1","x":30,"y":20,"amountM3":0,"dueHours":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestSpeedEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := doRequest(t, r, http.MethodPost, "/simulation/speed", `{"speed":200}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, r, http.MethodGet, "/simulation/speed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var speed map[string]int
	require.NoError(t, json.Unmarshal(raw, &speed))
	assert.Equal(t, 200, speed["speed"])

	rec, env = doRequest(t, r, http.MethodPost, "/simulation/speed", `{"speed":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "milliseconds")
}

func TestPause_BeforeRunConflicts(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodPost, "/simulation/pause", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "CREATED")
}

func TestBreakdownAndRepairFlow(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodPost, "/vehicle/breakdown",
		`{"vehicleId":"TD01","reason":"flat tyre","estimatedRepairHours":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var result simulation.BreakdownResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "TI1", result.Type)
	assert.NotEmpty(t, result.IncidentID)

	// A second breakdown on the same vehicle conflicts.
	rec, env = doRequest(t, r, http.MethodPost, "/vehicle/breakdown",
		`{"vehicleId":"TD01","reason":"again","estimatedRepairHours":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "unresolved")

	rec, _ = doRequest(t, r, http.MethodPost, "/vehicle/repair", `{"vehicleId":"TD01"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Nothing left to repair.
	rec, env = doRequest(t, r, http.MethodPost, "/vehicle/repair", `{"vehicleId":"TD01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "no unresolved")

	// Unknown vehicles are a 404 on both endpoints.
	rec, _ = doRequest(t, r, http.MethodPost, "/vehicle/breakdown",
		`{"vehicleId":"TX99","estimatedRepairHours":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
