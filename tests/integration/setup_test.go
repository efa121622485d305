package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"treasury/internal/handlers"
	"treasury/internal/logger"
	"treasury/internal/market"
	"treasury/internal/middleware"
	"treasury/internal/models"
	"treasury/internal/provider"
	"treasury/internal/services"
	"treasury/internal/validator"
)

// testApp holds the full application stack for integration tests, including
// a stub market data server standing in for the external provider.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Store    *market.Store
	Provider *httptest.Server
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Holding{},
		&models.HistoryPoint{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite and a stub provider serving the given handler. A nil handler serves
// an empty rate patch with no quotes.
func setupApp(t *testing.T, providerHandler http.HandlerFunc) *testApp {
	t.Helper()

	if providerHandler == nil {
		providerHandler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"rates": {}, "prices": []}`))
		}
	}
	providerServer := httptest.NewServer(providerHandler)
	t.Cleanup(providerServer.Close)

	db := setupIsolatedDB(t)
	store := market.NewStore()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	quotes := provider.NewClient(providerServer.URL, "test-key", httpClient)

	// Services
	userService := services.NewUserService(db)
	holdingService := services.NewHoldingService(db)
	historyService := services.NewHistoryService(db)
	refreshService := services.NewRefreshService(db, store, quotes, historyService, userService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, refreshService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	refreshHandler := handlers.NewRefreshHandler(refreshService)
	dashboardHandler := handlers.NewDashboardHandler(holdingService, userService, store)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware("pipeline-secret"))
	pipeline.POST("/refresh", refreshHandler.RefreshAll)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	holdings := protected.Group("/holdings")
	holdings.GET("", holdingHandler.ListHoldings)
	holdings.POST("", holdingHandler.AddHolding)
	holdings.DELETE("/:id", holdingHandler.DeleteHolding)
	holdings.PUT("/:id/quantity", holdingHandler.UpdateQuantity)
	holdings.POST("/:id/move", holdingHandler.MoveToPortfolio)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)
	protected.POST("/refresh", refreshHandler.Refresh)
	protected.GET("/history", historyHandler.GetHistory)
	protected.GET("/history/chart", historyHandler.GetChart)

	return &testApp{DB: db, Router: router, Store: store, Provider: providerServer}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, username, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// addHolding creates a holding through the API and returns its id.
func (app *testApp) addHolding(t *testing.T, token, list, symbol string, quantity float64, category, currency string) string {
	t.Helper()
	body := fmt.Sprintf(`{"list":%q,"symbol":%q,"quantity":%f,"category":%q,"currency":%q}`,
		list, symbol, quantity, category, currency)
	rec := app.request("POST", "/api/v1/holdings", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add holding failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}
