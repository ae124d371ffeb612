package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestMain(m *testing.M) {
	registerValidators()
	os.Exit(m.Run())
}

func fakeAuth(userId uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("id", userId)
		ctx.Set("role", "student")
	}
}

func TestPingRoute(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestMaintenanceMode(t *testing.T) {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1 := apiv1Group(router)
	apiv1.GET("/events", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/events", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreatePurchaseRejectsUnknownStrategy(t *testing.T) {
	router := setupRouter()
	authorized := apiv1Group(router)
	authorized.Use(fakeAuth(9))
	purchaseHandlers(authorized)

	body := `{"event":1,"seats":[42],"strategy":"cash"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/purchases", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errMsg := gjson.Get(w.Body.String(), "error").String()
	assert.Contains(t, errMsg, "Strategy")
}

func TestCreatePurchaseRequiresSeats(t *testing.T) {
	router := setupRouter()
	authorized := apiv1Group(router)
	authorized.Use(fakeAuth(9))
	purchaseHandlers(authorized)

	body := `{"event":1,"seats":[],"strategy":"wallet"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/purchases", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletTopUpRejectsNegativeAmount(t *testing.T) {
	router := setupRouter()
	authorized := apiv1Group(router)
	authorized.Use(fakeAuth(9))
	purchaseHandlers(authorized)

	body := `{"amount":"-5.00"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/wallet/topup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCachedPurchaseViewOnlyServesTheOwner(t *testing.T) {
	val := `{"reference":"ref-1","status":"pending","user_id":9,"amount":"100.00","currency":"usd"}`

	view, ok := cachedPurchaseView(val, 9)
	assert.True(t, ok)
	assert.Equal(t, "pending", view["status"])
	assert.Equal(t, "ref-1", view["reference"])

	_, ok = cachedPurchaseView(val, 8)
	assert.False(t, ok)

	_, ok = cachedPurchaseView("not json", 9)
	assert.False(t, ok)
}

func TestStripeWebhookRejectsUnsignedPayload(t *testing.T) {
	router := setupRouter()
	stripeWebhookRoute(router)

	body := `{"type":"checkout.session.completed"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmissionRequiresCode(t *testing.T) {
	router := setupRouter()
	staff := apiv1Group(router)
	staff.Use(fakeAuth(2))
	admissionHandlers(staff)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/admissions/check-in", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
