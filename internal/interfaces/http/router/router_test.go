package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	appidentity "github.com/dmflow/backend/internal/application/identity"
	"github.com/dmflow/backend/internal/domain/billing"
	"github.com/dmflow/backend/internal/infrastructure/auth"
	"github.com/dmflow/backend/internal/infrastructure/config"
	"github.com/dmflow/backend/internal/infrastructure/persistence"
	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
	"github.com/dmflow/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine  *gin.Engine
	catalog *appbilling.TierCatalogService
	users   *appidentity.UserService
	db      *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.TierModel{},
		&models.BillingAccountModel{},
		&models.UserModel{},
		&models.SubscriptionModel{},
		&models.WorkspaceModel{},
		&models.WorkspaceMemberModel{},
		&models.UsageCounterModel{},
	))

	logger := zap.NewNop()
	tierRepo := persistence.NewTierRepository(db)
	userRepo := persistence.NewUserRepository(db)
	accountRepo := persistence.NewBillingAccountRepository(db)
	subRepo := persistence.NewSubscriptionRepository(db)
	workspaceRepo := persistence.NewWorkspaceRepository(db)
	memberRepo := persistence.NewWorkspaceMemberRepository(db)
	counterRepo := persistence.NewUsageCounterRepository(db)

	catalog := appbilling.NewTierCatalogService(tierRepo, userRepo, nil, logger)
	resolution := appbilling.NewTierResolutionService(userRepo, workspaceRepo, tierRepo, subRepo, nil, logger)
	quota := appbilling.NewQuotaService(resolution, counterRepo, workspaceRepo, 30, logger)
	users := appidentity.NewUserService(userRepo, tierRepo, resolution, logger)
	subscriptions := appbilling.NewSubscriptionService(subRepo, accountRepo, tierRepo, nil, logger)
	workspaces := appidentity.NewWorkspaceService(workspaceRepo, memberRepo, userRepo, quota, resolution, logger)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-that-is-long-enough-123",
		Expiration: time.Hour,
		Issuer:     "dmflow-backend",
	})

	engine := New(Dependencies{
		Auth:       handler.NewAuthHandler(users, jwtService, logger),
		Tiers:      handler.NewTierHandler(catalog, logger),
		Quota:      handler.NewQuotaHandler(quota, resolution, logger),
		Workspaces: handler.NewWorkspaceHandler(workspaces, logger),
		Admin:      handler.NewAdminHandler(users, subscriptions, logger),
		JWT:        jwtService,
		Logger:     logger,
	})

	return &testServer{engine: engine, catalog: catalog, users: users, db: db}
}

func (ts *testServer) seedDefaultTier(t *testing.T) {
	t.Helper()
	two := int64(2)
	one := int64(1)
	_, err := ts.catalog.Create(context.Background(), appbilling.TierInput{
		Name:      "starter",
		IsDefault: true,
		Limits: billing.Limits{
			AIMessages: &two,
			Workspaces: &one,
		},
	})
	require.NoError(t, err)
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"`+email+`","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data dto.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// registerAdmin creates a user and promotes it to platform admin
// directly in the database, then logs in again for a token carrying
// the admin role.
func (ts *testServer) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	ts.register(t, email)
	err := ts.db.Model(&models.UserModel{}).
		Where("email = ?", email).
		Update("role", "admin").Error
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"`+email+`","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data dto.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestRouter_RegisterAndMe(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDefaultTier(t)
	token := ts.register(t, "ada@example.com")

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestRouter_DuplicateEmailConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDefaultTier(t)
	ts.register(t, "ada@example.com")

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"ADA@example.com","password":"correct-horse-battery"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_TAKEN")
}

func TestRouter_QuotaConsumeUntilDenied(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDefaultTier(t)
	token := ts.register(t, "ada@example.com")

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/api/v1/quota/consume", token,
			`{"resource":"ai_messages"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"allowed":true`)
	}

	// Third consumption exceeds the starter ceiling of two
	rec := ts.do(t, http.MethodPost, "/api/v1/quota/consume", token,
		`{"resource":"ai_messages"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"allowed":false`)
	assert.Contains(t, rec.Body.String(), `"current":2`)

	check := ts.do(t, http.MethodGet, "/api/v1/quota/check/ai_messages", token, "")
	require.Equal(t, http.StatusOK, check.Code)
	assert.Contains(t, check.Body.String(), `"allowed":false`)
}

func TestRouter_UnknownResourceIsBadRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDefaultTier(t)
	token := ts.register(t, "ada@example.com")

	rec := ts.do(t, http.MethodGet, "/api/v1/quota/check/teleporters", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WorkspaceCeiling(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDefaultTier(t)
	token := ts.register(t, "ada@example.com")

	rec := ts.do(t, http.MethodPost, "/api/v1/workspaces", token, `{"name":"First"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/workspaces", token, `{"name":"Second"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "QUOTA_EXCEEDED")
}

func TestRouter_AdminTierCRUDRequiresRole(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDefaultTier(t)
	memberToken := ts.register(t, "member@example.com")
	adminToken := ts.registerAdmin(t, "root@example.com")

	body := `{"name":"pro","limits":{"aiMessages":100}}`

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/tiers", memberToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/tiers", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"pro"`)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/tiers?status=active", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
