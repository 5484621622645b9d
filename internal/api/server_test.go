package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartkitchen/internal/alerts"
	"smartkitchen/internal/client"
	"smartkitchen/internal/dashboard"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	inventoryJSON = `[
		{"ingredient":"spinach","category":"Leafy Greens","quality":"Poor","quantity":6,"remaining_life":3,"max_life":10,"date":"2025-03-30"},
		{"ingredient":"onion","category":"Bulbs","quality":"Good","quantity":40,"remaining_life":20,"max_life":30,"date":"2025-03-25"},
		{"ingredient":"tomato","category":"Fruit Vegetables","quality":"Rotten","quantity":12,"remaining_life":6,"max_life":10,"date":"2025-03-28"}
	]`
	menuJSON = `[
		{"dish_name":"Veg Curry","category":"Mains","price":12.5,"ingredients":["spinach","onion","tomato"]},
		{"dish_name":"Onion Soup","category":"Starters","price":6,"ingredients":["onion"]}
	]`
	weeklyJSON = `[
		{"date":"2025-03-03","dish_name":"A","sales":10},
		{"date":"2025-03-10","dish_name":"A","sales":20}
	]`
)

// fakeKitchen emulates the restaurant backend
type fakeKitchen struct {
	down bool
}

func (f *fakeKitchen) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.down {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}
	switch r.URL.Path {
	case client.PathInventory:
		w.Write([]byte(inventoryJSON))
	case client.PathMenu:
		w.Write([]byte(menuJSON))
	case client.PathWeeklySales, client.PathMonthlySales:
		w.Write([]byte(weeklyJSON))
	case client.PathPrediction:
		w.Write([]byte(`[{"date":"2025-03-11","dish_name":"A","predicted_sales":14}]`))
	case client.PathSalesLastNMonths:
		w.Write([]byte(`[{"a":1,"b":"x"}]`))
	case client.PathAddOrder:
		w.Write([]byte(`"Order added successfully"`))
	case client.PathUploadImage:
		_, header, err := r.FormFile(client.UploadField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"` + header.Filename + `":{"tomato":3,"onion":1}}`))
	case client.PathDetectionImage:
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg"))
	case client.PathInventoryForecast:
		w.Write([]byte(`{"predicted_sales":[],"to_buy":{"spinach":2},"insufficient":{},"sufficient":{}}`))
	default:
		http.NotFound(w, r)
	}
}

func setupAPI(t *testing.T, opts Options) (*DashboardAPI, *fakeKitchen) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kitchen := &fakeKitchen{}
	backend := httptest.NewServer(kitchen)
	t.Cleanup(backend.Close)

	svc := dashboard.NewService(client.NewApiClient(backend.URL), alerts.DefaultThresholds())
	api := NewDashboardAPI(svc, opts)

	require.NoError(t, svc.Refresh(context.Background()))
	require.NoError(t, svc.RefreshSales(context.Background()))
	return api, kitchen
}

func performRequest(api *DashboardAPI, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	api.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHealth(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestGetInventory(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/api/v1/inventory?sort=quantity&dir=desc&page_size=5", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	result := decode(t, w)["result"].(map[string]interface{})
	assert.Equal(t, float64(3), result["total"])
	page := result["page"].([]interface{})
	assert.Equal(t, "onion", page[0].(map[string]interface{})["ingredient"])

	w = performRequest(api, "GET", "/api/v1/inventory?stock=low&category=Leafy+Greens", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	result = decode(t, w)["result"].(map[string]interface{})
	assert.Equal(t, float64(1), result["total"])

	w = performRequest(api, "GET", "/api/v1/inventory?page_size=7", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(api, "GET", "/api/v1/inventory?sort=price", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAlertsAndExpiring(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/api/v1/alerts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	report := response["report"].(map[string]interface{})
	assert.Equal(t, float64(2), report["alert_count"])
	assert.Equal(t, true, response["has_quality_issues"])

	w = performRequest(api, "GET", "/api/v1/inventory/expiring?days=7", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]interface{})
	assert.Len(t, items, 2)

	w = performRequest(api, "GET", "/api/v1/inventory/expiring?days=soon", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(api, "GET", "/api/v1/inventory/trends", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRecommendations(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/api/v1/recommendations?ingredient=Spinach&ingredient=onion", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	recs := decode(t, w)["recommendations"].([]interface{})
	require.Len(t, recs, 2)
	top := recs[0].(map[string]interface{})
	assert.Equal(t, float64(7), top["score"])
	assert.Equal(t, float64(20), top["discount"])
	assert.Equal(t, 10.0, top["discounted_price"])

	w = performRequest(api, "GET", "/api/v1/recommendations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["recommendations"])
}

func TestGetMenu(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/api/v1/menu?search=soup", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Len(t, response["dishes"], 1)
	assert.Equal(t, []interface{}{"All", "Mains", "Starters"}, response["categories"])
}

func TestGetSales(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/api/v1/sales/weekly", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	series := decode(t, w)["series"].([]interface{})
	require.Len(t, series, 1)
	assert.Equal(t, "Mon", series[0].(map[string]interface{})["label"])

	w = performRequest(api, "GET", "/api/v1/sales/prediction", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(api, "GET", "/api/v1/sales/yearly", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSalesReport(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "GET", "/api/v1/reports/sales.csv?months=2", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a,b\n\"1\",\"x\"", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	w = performRequest(api, "GET", "/api/v1/reports/sales.csv?months=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "POST", "/api/v1/orders", []byte(`{"dish_name":"Veg Curry","quantity":2}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Order added successfully", decode(t, w)["message"])

	w = performRequest(api, "POST", "/api/v1/orders", []byte(`{"dish_name":"Veg Curry","quantity":0}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScan(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "crate.jpg")
	require.NoError(t, err)
	part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	w := performRequest(api, "POST", "/api/v1/scan", buf.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	response := decode(t, w)
	assert.Equal(t, "crate.jpg", response["filename"])
	assert.Equal(t, float64(4), response["total"])

	w = performRequest(api, "POST", "/api/v1/scan", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(api, "GET", "/api/v1/scan/image", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
}

func TestRefresh(t *testing.T) {
	api, _ := setupAPI(t, Options{})

	w := performRequest(api, "POST", "/api/v1/refresh", nil, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["stale"])
}

func TestBackendDownKeepsSnapshot(t *testing.T) {
	api, kitchen := setupAPI(t, Options{})
	kitchen.down = true

	w := performRequest(api, "POST", "/api/v1/refresh", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = performRequest(api, "GET", "/api/v1/restock", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, float64(http.StatusServiceUnavailable), decode(t, w)["status"])

	w = performRequest(api, "GET", "/api/v1/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)
	assert.Equal(t, true, status["stale"])
	assert.Equal(t, float64(3), status["items"])
}

func TestAuthMiddleware(t *testing.T) {
	api, _ := setupAPI(t, Options{JWTSecret: "s3cret"})
	body := []byte(`{"dish_name":"Veg Curry","quantity":1}`)

	w := performRequest(api, "POST", "/api/v1/orders", body, "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "manager",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signed)
	api.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer not-a-token")
	api.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// reads stay open
	w = performRequest(api, "GET", "/api/v1/alerts", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketReceivesSummary(t *testing.T) {
	api, _ := setupAPI(t, Options{})
	srv := httptest.NewServer(api.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var summary dashboard.Summary
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&summary))
	assert.Equal(t, "snapshot", summary.Type)
	assert.Equal(t, 3, summary.Items)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "bogus"}))
	var errMsg map[string]string
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Contains(t, errMsg["error"], "bogus")
}
