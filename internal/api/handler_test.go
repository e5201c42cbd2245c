package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-laundry-backend/config"
	"campus-laundry-backend/internal/db"
	"campus-laundry-backend/internal/metrics"
	"campus-laundry-backend/internal/mw"
	"campus-laundry-backend/internal/session"
	"campus-laundry-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var fixedNow = time.Date(2025, time.January, 30, 10, 0, 0, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	handler  *Handler
	sessions *session.Manager
	store    store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gormDB, err := db.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st := store.NewGormStore(gormDB)
	mgr := session.NewManager(st, time.Hour, time.Hour, zerolog.Nop(), m)

	h := NewHandler(st, mgr, nil, m, zerolog.Nop(), 2)
	h.now = func() time.Time { return fixedNow }

	router := NewRouter(h, config.ServerConfig{CacheTTLSeconds: 60}, reg, zerolog.Nop())
	return &testServer{router: router, handler: h, sessions: mgr, store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(mw.SessionHeader, token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, role string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/", "", gin.H{"username": username, "password": "pw", "role": role})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	testCases := []struct {
		name    string
		body    gin.H
		status  int
		message string
	}{
		{"missing username", gin.H{"username": "", "password": "pw", "role": "student"}, http.StatusBadRequest, "Please fill in all fields"},
		{"missing password", gin.H{"username": "bob", "role": "student"}, http.StatusBadRequest, "Please fill in all fields"},
		{"unknown role", gin.H{"username": "bob", "password": "pw", "role": "janitor"}, http.StatusBadRequest, `unknown role "janitor"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/", "", tc.body)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.message, decode(t, w)["error"])
		})
	}

	w := srv.do(t, http.MethodPost, "/", "", gin.H{"username": "warden", "password": "pw", "role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "admin", resp["role"])
	assert.Equal(t, "/admin/dashboard", resp["redirect"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), mw.SessionCookie+"="+resp["token"].(string))

	page := decode(t, srv.do(t, http.MethodGet, "/", resp["token"].(string), nil))
	assert.Equal(t, "/admin/dashboard", page["redirect"])
}

func TestRoleAndSessionEnforcement(t *testing.T) {
	srv := newTestServer(t)
	student := srv.login(t, "ST001", "student")
	admin := srv.login(t, "warden", "admin")

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/student/orders", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/admin/orders", "bogus", nil).Code)
	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodGet, "/admin/orders", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodGet, "/student/orders", admin, nil).Code)

	w := srv.do(t, http.MethodPost, "/logout", student, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/student/orders", student, nil).Code)

	orders, err := srv.store.ListOrders(t.Context(), student)
	require.NoError(t, err)
	assert.Empty(t, orders, "logout purges the session's records")
}

func TestStudentOrders(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ST007", "student")

	page := decode(t, srv.do(t, http.MethodGet, "/student/orders?new=true", token, nil))
	assert.Equal(t, true, page["dialogOpen"])
	assert.Len(t, page["orders"], 2)
	assert.Len(t, page["washTypes"], 3)

	page = decode(t, srv.do(t, http.MethodGet, "/student/orders", token, nil))
	assert.Equal(t, false, page["dialogOpen"])

	w := srv.do(t, http.MethodPost, "/student/orders", token, gin.H{"washType": "dry-clean", "detergentType": "Standard", "clothCount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please fill in all fields", decode(t, w)["error"])

	w = srv.do(t, http.MethodPost, "/student/orders", token, gin.H{"washType": "dry-clean", "detergentType": "Standard", "clothCount": 6})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	order := resp["order"].(map[string]any)
	assert.Equal(t, "003", order["id"])
	assert.Equal(t, "ST007", order["studentId"])
	assert.Equal(t, "Dry Clean", order["washType"])
	assert.Equal(t, "Pending", order["status"])
	assert.Equal(t, "2025-01-30", order["givenDate"])
	assert.Equal(t, "2025-02-01", order["returnDate"])
	assert.Equal(t, "Order #003 has been placed successfully", resp["notice"].(map[string]any)["description"])

	page = decode(t, srv.do(t, http.MethodGet, "/student/orders", token, nil))
	assert.Len(t, page["orders"], 3, "exactly one order was appended")

	dash := decode(t, srv.do(t, http.MethodGet, "/student/dashboard", token, nil))
	assert.Equal(t, float64(3), dash["activeOrders"])
	assert.Equal(t, float64(1), dash["pendingComplaints"])
	cards := dash["cards"].([]any)
	assert.Equal(t, "/student/orders?new=true", cards[0].(map[string]any)["link"])
}

func TestStudentComplaints(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ST007", "student")

	w := srv.do(t, http.MethodPost, "/student/complaints", token, gin.H{"subject": "Torn shirt", "description": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please fill in all fields", decode(t, w)["error"])

	w = srv.do(t, http.MethodPost, "/student/complaints", token, gin.H{"subject": "Torn shirt", "description": "Sleeve ripped"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Complaint #C003 has been submitted successfully", resp["notice"].(map[string]any)["description"])

	list := decode(t, srv.do(t, http.MethodGet, "/student/complaints", token, nil))["complaints"].([]any)
	require.Len(t, list, 3)
	first := list[0].(map[string]any)
	assert.Equal(t, "C003", first["id"])
	assert.Equal(t, "2025-01-30", first["date"])
	assert.Equal(t, "Pending", first["status"])
}

func TestAdminOrderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")

	page := decode(t, srv.do(t, http.MethodGet, "/admin/orders", token, nil))
	assert.Equal(t, float64(4), page["total"])
	counts := page["counts"].(map[string]any)
	assert.Equal(t, float64(2), counts["Pending"])
	rows := page["orders"].([]any)
	assert.Equal(t, []any{}, rows[0].(map[string]any)["actions"], "delivered orders offer no action")
	assert.Equal(t, []any{"Collected"}, rows[1].(map[string]any)["actions"])

	w := srv.do(t, http.MethodPost, "/admin/orders/002/advance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["changed"])
	assert.Equal(t, "Order #002 marked as Collected", resp["notice"].(map[string]any)["description"])

	w = srv.do(t, http.MethodPost, "/admin/orders/001/advance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, false, resp["changed"])
	assert.Equal(t, "Delivered", resp["order"].(map[string]any)["status"])
	assert.NotContains(t, resp, "notice")

	w = srv.do(t, http.MethodPost, "/admin/orders/002/status", token, gin.H{"status": "Pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = srv.do(t, http.MethodPost, "/admin/orders/004/status", token, gin.H{"status": "Delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = srv.do(t, http.MethodPost, "/admin/orders/002/status", token, gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = srv.do(t, http.MethodPost, "/admin/orders/999/advance", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPost, "/admin/orders/002/status", token, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Delivered", decode(t, w)["order"].(map[string]any)["status"])
}

func TestAdminComplaints(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")

	page := decode(t, srv.do(t, http.MethodGet, "/admin/complaints", token, nil))
	counts := page["counts"].(map[string]any)
	assert.Equal(t, float64(2), counts["Pending"])
	assert.Equal(t, float64(1), counts["Resolved"])

	w := srv.do(t, http.MethodPost, "/admin/complaints/C001/resolve", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["changed"])
	assert.Equal(t, "Complaint #C001 has been marked as resolved", resp["notice"].(map[string]any)["description"])

	w = srv.do(t, http.MethodPost, "/admin/complaints/C001/resolve", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["changed"])

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodPost, "/admin/complaints/C999/resolve", token, nil).Code)
}

func TestAdminStock(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")

	page := decode(t, srv.do(t, http.MethodGet, "/admin/stock", token, nil))
	items := page["items"].([]any)
	require.Len(t, items, 4)
	first := items[0].(map[string]any)
	assert.Equal(t, "Good", first["level"])
	assert.Equal(t, float64(100), first["percentage"])
	assert.Empty(t, page["alerts"])

	w := srv.do(t, http.MethodPost, "/admin/stock/4/adjust", token, gin.H{"amount": "-10"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	item := resp["item"].(map[string]any)
	assert.Equal(t, float64(15), item["currentStock"])
	assert.Equal(t, "Low", item["level"])
	assert.Equal(t, "Stain Remover stock decreased by 10 L", resp["notice"].(map[string]any)["description"])

	w = srv.do(t, http.MethodPost, "/admin/stock/4/adjust", token, gin.H{"delta": -500})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["item"].(map[string]any)["currentStock"])

	w = srv.do(t, http.MethodPost, "/admin/stock/1/adjust", token, gin.H{"delta": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "notice")

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, "/admin/stock/1/adjust", token, gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodPost, "/admin/stock/1/adjust", token, gin.H{"amount": "lots"}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodPost, "/admin/stock/9/adjust", token, gin.H{"delta": 1}).Code)

	page = decode(t, srv.do(t, http.MethodGet, "/admin/stock", token, nil))
	alerts := page["alerts"].([]any)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Stain Remover", alerts[0].(map[string]any)["detergentType"])
}

func TestAdminStock_HugeAmountSaturates(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")

	w := srv.do(t, http.MethodPost, "/admin/stock/1/adjust", token, gin.H{"amount": "+9223372036854775807"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	item := resp["item"].(map[string]any)
	assert.Greater(t, item["currentStock"].(float64), float64(150))
	assert.Equal(t, "Good", item["level"])
	assert.Equal(t, float64(100), item["percentage"])
	assert.Equal(t, "Standard stock increased by 9223372036854775807 kg", resp["notice"].(map[string]any)["description"])

	w = srv.do(t, http.MethodPost, "/admin/stock/1/adjust", token, gin.H{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Good", decode(t, w)["item"].(map[string]any)["level"])

	w = srv.do(t, http.MethodPost, "/admin/stock/2/adjust", token, gin.H{"delta": math.MinInt})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, float64(0), resp["item"].(map[string]any)["currentStock"])
	assert.Equal(t, "Hypoallergenic stock decreased by 9223372036854775808 kg", resp["notice"].(map[string]any)["description"])
}

func TestAdminDashboard(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")

	dash := decode(t, srv.do(t, http.MethodGet, "/admin/dashboard", token, nil))
	assert.Equal(t, float64(4), dash["totalOrders"])
	assert.Equal(t, float64(2), dash["pendingOrders"])
	assert.Equal(t, float64(2), dash["pendingComplaints"])
	assert.InDelta(t, 81.25, dash["stockPercentage"], 0.01)

	recent := dash["recentOrders"].([]any)
	require.Len(t, recent, 3)
	assert.Equal(t, "004", recent[0].(map[string]any)["id"])

	complaints := dash["recentComplaints"].([]any)
	require.Len(t, complaints, 2)
	assert.Equal(t, "C003", complaints[0].(map[string]any)["id"])
	assert.Equal(t, "C001", complaints[1].(map[string]any)["id"])
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	tabA := srv.login(t, "warden", "admin")
	tabB := srv.login(t, "warden", "admin")

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/admin/orders/002/advance", tabA, nil).Code)

	rows := decode(t, srv.do(t, http.MethodGet, "/admin/orders", tabB, nil))["orders"].([]any)
	assert.Equal(t, "Pending", rows[1].(map[string]any)["status"])
}

func TestExports(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")

	w := srv.do(t, http.MethodGet, "/admin/orders/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-2025-01-30.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = srv.do(t, http.MethodGet, "/admin/stock/report", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdfContentType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestSubscriptions(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "warden", "admin")
	other := srv.login(t, "warden", "admin")
	endpoint := "https://push.example/abc"

	w := srv.do(t, http.MethodPut, "/api/subscriptions", token, gin.H{"endpoint": endpoint, "p256dh": "key", "auth": "secret"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodPut, "/api/subscriptions", token, gin.H{"endpoint": endpoint})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["subscribed"])

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, other, nil).Code)

	w = srv.do(t, http.MethodPut, "/api/subscriptions", other, gin.H{"endpoint": endpoint, "p256dh": "key", "auth": "hijack"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, other, nil).Code)

	assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodGet, "/api/subscriptions", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "", nil).Code)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, "/api/subscriptions", other, gin.H{"endpoint": endpoint}).Code)
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/subscriptions", token, gin.H{"endpoint": endpoint}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, token, nil).Code)
}

func TestVAPIDKey(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusServiceUnavailable, srv.do(t, http.MethodGet, "/api/vapid_public_key", "", nil).Code)

	srv.handler.webpush = &webpush.Options{VAPIDPublicKey: "public"}
	w := srv.do(t, http.MethodGet, "/api/vapid_public_key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public", decode(t, w)["public_key"])
}

func TestCatalogIsCached(t *testing.T) {
	srv := newTestServer(t)

	first := srv.do(t, http.MethodGet, "/api/catalog", "", nil)
	second := srv.do(t, http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, []any{"Normal", "Premium", "Dry Clean"}, decode(t, second)["washTypes"])
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ST001", "student")
	srv.do(t, http.MethodPost, "/student/orders", token, gin.H{"washType": "Normal", "detergentType": "Standard", "clothCount": 1})

	w := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "laundry_orders_created_total 1")
	assert.Contains(t, w.Body.String(), "laundry_active_sessions 1")

	w = srv.do(t, http.MethodGet, "/student/laundromat", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "page not found", resp["error"])
	assert.Equal(t, "/student/laundromat", resp["path"])
}
