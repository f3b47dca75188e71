package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type tokenValidatorStub struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *tokenValidatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type observerStub struct {
	method string
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/items/:id", chain...)
	r.POST("/items", chain...)
	return r
}

func perform(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := newEngine(JWT(&tokenValidatorStub{}))

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/items/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/items/1", "Basic abc").Code)
}

func TestJWTPropagatesValidatorError(t *testing.T) {
	r := newEngine(JWT(&tokenValidatorStub{err: appErrors.ErrInvalidToken}))

	w := perform(r, http.MethodGet, "/items/1", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTStoresClaims(t *testing.T) {
	validator := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleViewer}}
	var seen *models.JWTClaims
	r := newEngine(JWT(validator), func(c *gin.Context) {
		seen, _ = CurrentClaims(c)
	})

	w := perform(r, http.MethodGet, "/items/1", "bearer abc.def")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def", validator.token)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
}

func TestRequireWrite(t *testing.T) {
	for role, want := range map[models.UserRole]int{
		models.RoleSuperAdmin: http.StatusOK,
		models.RoleAdmin:      http.StatusOK,
		models.RoleViewer:     http.StatusForbidden,
	} {
		validator := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: role}}
		r := newEngine(JWT(validator), RequireWrite())
		assert.Equal(t, want, perform(r, http.MethodPost, "/items", "Bearer t").Code, role)
	}

	r := newEngine(RequireWrite())
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/items", "").Code)
}

func TestRequireEntitlement(t *testing.T) {
	validator := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	r := newEngine(JWT(validator), RequireEntitlement())

	w := perform(r, http.MethodGet, "/items/1", "Bearer t")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_REQUIRED")

	validator.claims = &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin, Entitled: true}
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/items/1", "Bearer t").Code)
}

func TestRateLimiterPerUser(t *testing.T) {
	validator := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	limiter := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := newEngine(JWT(validator), limiter.RateLimit())

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/items/1", "Bearer t").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/items/1", "Bearer t").Code)
	w := perform(r, http.MethodGet, "/items/1", "Bearer t")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	validator.claims = &models.JWTClaims{UserID: "u2", Role: models.RoleAdmin}
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/items/1", "Bearer t").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &observerStub{}
	r := newEngine(Metrics(observer))

	perform(r, http.MethodGet, "/items/42", "")
	assert.Equal(t, http.MethodGet, observer.method)
	assert.Equal(t, "/items/:id", observer.path)
	assert.Equal(t, http.StatusOK, observer.status)
}

func TestResponseMetaAndCacheHit(t *testing.T) {
	var meta map[string]interface{}
	r := newEngine(ResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
	})

	w := perform(r, http.MethodGet, "/items/1", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("bearer  abc.def ")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, err := bearerToken(header)
		assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status, header)
	}
}
