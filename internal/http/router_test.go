package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	"github.com/yungbote/leontief-backend/internal/data/repos/testutil"
	types "github.com/yungbote/leontief-backend/internal/domain"
	httpH "github.com/yungbote/leontief-backend/internal/http/handlers"
	httpMW "github.com/yungbote/leontief-backend/internal/http/middleware"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/platform/blob"
	"github.com/yungbote/leontief-backend/internal/services"
)

type testAPI struct {
	router  *gin.Engine
	public  *types.Model
	private *types.Model
	admin   string
	analyst string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	guest := testutil.Role(t, db, types.RoleGuest)
	finance := testutil.SeedRole(t, ctx, db, "finance")
	resolver := access.NewResolver(guest.ID)

	modelRepo := repos.NewModelRepo(db, log)
	workspaceRepo := repos.NewWorkspaceRepo(db, log)
	sectorRepo := repos.NewSectorRepo(db, log)
	categoryRepo := repos.NewCategoryRepo(db, log)
	roleRepo := repos.NewRoleRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)

	store, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	metrics := observability.NewMetrics()

	authService := services.NewAuthService(log, userRepo, "router-test", time.Hour)
	userService := services.NewUserService(db, log, resolver, userRepo, roleRepo, authService)
	roleService := services.NewRoleService(db, log, resolver, roleRepo, userRepo, modelRepo)
	modelService := services.NewModelService(db, log, resolver, modelRepo, workspaceRepo, sectorRepo, categoryRepo, roleRepo, store, metrics)
	workspaceService := services.NewWorkspaceService(db, log, resolver, modelRepo, workspaceRepo, sectorRepo, categoryRepo)
	simulationService := services.NewSimulationService(db, log, resolver, modelRepo, workspaceRepo, nil, metrics, services.SimulationConfig{Workers: 2})

	if _, err := userService.BootstrapAdmin(ctx, "root", "rootpw"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	api := &testAPI{
		public:  testutil.SeedModel(t, ctx, db, "public", guest),
		private: testutil.SeedModel(t, ctx, db, "private", *finance),
	}
	api.router = NewRouter(RouterConfig{
		Log:               log,
		Metrics:           metrics,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, authService),
		HealthHandler:     httpH.NewHealthHandler(db),
		AuthHandler:       httpH.NewAuthHandler(authService),
		UserHandler:       httpH.NewUserHandler(userService),
		RoleHandler:       httpH.NewRoleHandler(roleService),
		ModelHandler:      httpH.NewModelHandler(modelService),
		WorkspaceHandler:  httpH.NewWorkspaceHandler(workspaceService),
		SimulationHandler: httpH.NewSimulationHandler(simulationService),
	})

	api.admin = api.login(t, "root", "rootpw")
	rec := api.do(t, http.MethodPost, "/api/users", api.admin, map[string]any{
		"username": "ana", "email": "ana@example.com", "password": "anapw", "role_ids": []uint{finance.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create analyst: %d %s", rec.Code, rec.Body.String())
	}
	api.analyst = api.login(t, "ana", "anapw")
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &out)
	return out.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rec, &env)
	return env.Error.Code
}

func modelPath(id int64, suffix string) string {
	return "/api/models/" + strconv.FormatInt(id, 10) + suffix
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	if rec := api.do(t, http.MethodGet, "/healthcheck", "", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck = %d %q", rec.Code, rec.Body.String())
	}
	rec := api.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("leontief_http_requests_total")) {
		t.Fatalf("metrics = %d", rec.Code)
	}
}

func TestRouter_VisibilityAndStatusCodes(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/models", "", nil)
	var list struct {
		Models []services.ModelSummary `json:"models"`
	}
	decode(t, rec, &list)
	if rec.Code != http.StatusOK || len(list.Models) != 1 {
		t.Fatalf("anonymous list = %d %+v", rec.Code, list.Models)
	}

	if rec := api.do(t, http.MethodGet, modelPath(int64(api.private.ID), ""), "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("anonymous get private = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, modelPath(int64(api.private.ID), ""), api.analyst, nil); rec.Code != http.StatusOK {
		t.Fatalf("analyst get private = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/models/abc", "", nil); rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_model_id" {
		t.Fatalf("bad id = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/models/-9223372036854775808", "", nil); rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_model_id" {
		t.Fatalf("min int64 id = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/users/9223372036854775808", api.admin, nil); rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_user_id" {
		t.Fatalf("id past bigint = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/users/me?token="+api.analyst, "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("query-string token = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/models", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/users/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me = %d", rec.Code)
	}

	body := map[string]any{"pos": 0, "name": "x", "outgoing": []float64{0, 0, 0}, "incoming": []float64{0, 0}, "impact": []float64{0}}
	if rec := api.do(t, http.MethodPost, modelPath(int64(api.public.ID), "/sectors"), api.analyst, body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-admin insert on visible model = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPost, modelPath(int64(api.private.ID), "/sectors"), "", body); rec.Code != http.StatusNotFound {
		t.Fatalf("anonymous insert on hidden model = %d", rec.Code)
	}

	singular := map[string]any{"matrix": [][]float64{{1, 0}, {0, 0}}}
	rec = api.do(t, http.MethodPut, modelPath(int64(api.public.ID), "/economic"), api.admin, singular)
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "singular_matrix" {
		t.Fatalf("singular economic = %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPost, modelPath(int64(api.public.ID), "/simulate"), "", map[string]any{"values": map[string]float64{"7": 1}})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "out_of_range" {
		t.Fatalf("simulate out of range = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SimulateAndEdit(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, modelPath(int64(api.public.ID), "/simulate"), "", map[string]any{"values": map[string]float64{"0": 100}})
	if rec.Code != http.StatusOK {
		t.Fatalf("simulate = %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Result   []float64 `json:"result"`
		Detailed []float64 `json:"detailed"`
	}
	decode(t, rec, &res)
	if len(res.Result) != 2 || math.Abs(res.Result[0]-1000.0/9) > 1e-9 || math.Abs(res.Result[1]-200.0/9) > 1e-9 {
		t.Fatalf("simulate result = %v", res.Result)
	}

	rec = api.do(t, http.MethodPost, modelPath(int64(api.public.ID), "/categories"), api.admin, map[string]any{
		"pos": 1, "name": "water", "unit": "m3", "impact": []float64{1, 1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("insert category = %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPatch, modelPath(int64(api.public.ID), "/sectors/1"), api.admin, map[string]any{"name": "manufacturing"})
	var view struct {
		Model services.ModelView `json:"model"`
	}
	decode(t, rec, &view)
	if rec.Code != http.StatusOK || view.Model.Sectors[1].Name != "manufacturing" || len(view.Model.Categories) != 2 {
		t.Fatalf("modify sector = %d %+v", rec.Code, view.Model)
	}
	if rec := api.do(t, http.MethodDelete, modelPath(int64(api.public.ID), "/categories/9"), api.admin, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing category = %d", rec.Code)
	}
}

func TestRouter_WorkspaceLifecycle(t *testing.T) {
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodPost, modelPath(int64(api.public.ID), "/clone"), "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous clone = %d", rec.Code)
	}
	rec := api.do(t, http.MethodPost, modelPath(int64(api.private.ID), "/clone"), api.analyst, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("clone = %d %s", rec.Code, rec.Body.String())
	}
	var ws struct {
		Model services.ModelView `json:"model"`
	}
	decode(t, rec, &ws)
	if ws.Model.ID >= 0 {
		t.Fatalf("workspace id = %d", ws.Model.ID)
	}

	rec = api.do(t, http.MethodGet, "/api/workspaces", api.analyst, nil)
	var mine struct {
		Workspaces []services.ModelSummary `json:"workspaces"`
	}
	decode(t, rec, &mine)
	if len(mine.Workspaces) != 1 {
		t.Fatalf("workspaces = %+v", mine.Workspaces)
	}

	// analysts edit their own workspace without admin rights
	rec = api.do(t, http.MethodPatch, modelPath(ws.Model.ID, ""), api.analyst, map[string]any{"name": "what-if"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename workspace = %d %s", rec.Code, rec.Body.String())
	}
	if rec := api.do(t, http.MethodPost, modelPath(int64(api.public.ID), "/persist"), api.analyst, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("persist permanent id = %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, modelPath(ws.Model.ID, "/persist"), api.analyst, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("persist = %d %s", rec.Code, rec.Body.String())
	}
	var persisted struct {
		Model services.ModelView `json:"model"`
	}
	decode(t, rec, &persisted)
	if persisted.Model.ID <= 0 || persisted.Model.Name != "what-if" {
		t.Fatalf("persisted = %+v", persisted.Model)
	}
	if rec := api.do(t, http.MethodGet, modelPath(ws.Model.ID, ""), api.analyst, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("workspace after persist = %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, modelPath(persisted.Model.ID, "/export"), api.analyst, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Roles(t *testing.T) {
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/api/roles", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list roles = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/roles", api.analyst, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-admin list roles = %d", rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/api/roles", api.admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list roles = %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPost, "/api/roles", api.analyst, map[string]string{"name": "ops"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-admin create role = %d", rec.Code)
	}
	rec = api.do(t, http.MethodPost, "/api/roles", api.admin, map[string]string{"name": "ops"})
	var created struct {
		Role types.Role `json:"role"`
	}
	decode(t, rec, &created)
	if rec.Code != http.StatusCreated || created.Role.ID == 0 {
		t.Fatalf("create role = %d %s", rec.Code, rec.Body.String())
	}
	if rec := api.do(t, http.MethodPost, "/api/roles", api.admin, map[string]string{"name": "ops"}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate role = %d", rec.Code)
	}
	path := "/api/roles/" + strconv.FormatUint(uint64(created.Role.ID), 10)
	if rec := api.do(t, http.MethodDelete, path+"?force=true", api.admin, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete role = %d", rec.Code)
	}
}
