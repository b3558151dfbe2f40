package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/logging"
	"github.com/finmetrics/portfolio-api/internal/server/marketdata"
	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

// fakeUsers implements UserFacade. Tokens are opaque strings mapped to
// usernames in the tokens map.
type fakeUsers struct {
	tokens      map[string]string
	roles       map[string][]string
	registerErr error
	loginOut    *services.LoginResult
	loginErr    error
	profile     *services.Profile
	profileErr  error
	listOut     []*services.Profile
	deleteErr   error
}

func (f *fakeUsers) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: 1, UserName: username, Email: email}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}

func (f *fakeUsers) VerifyToken(token string) (string, error) {
	if username, ok := f.tokens[token]; ok {
		return username, nil
	}
	return "", common.ErrInvalidToken
}

func (f *fakeUsers) GetProfile(ctx context.Context, username string) (*services.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeUsers) Roles(ctx context.Context, username string) ([]string, error) {
	return f.roles[username], nil
}

func (f *fakeUsers) ListUsers(ctx context.Context) ([]*services.Profile, error) {
	return f.listOut, nil
}

func (f *fakeUsers) DeleteUser(ctx context.Context, id int64) error {
	return f.deleteErr
}

type fakePortfolios struct {
	out    *models.Portfolio
	list   []*models.Portfolio
	err    error
	delErr error
}

func (f *fakePortfolios) Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakePortfolios) Get(ctx context.Context, id int64) (*models.Portfolio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakePortfolios) List(ctx context.Context) ([]*models.Portfolio, error) {
	return f.list, f.err
}

func (f *fakePortfolios) Update(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakePortfolios) Delete(ctx context.Context, id int64) error { return f.delErr }

type fakeSecurities struct {
	out  *models.Security
	list []*models.Security
	err  error
}

func (f *fakeSecurities) Create(ctx context.Context, s *models.Security) (*models.Security, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeSecurities) Get(ctx context.Context, symbol string) (*models.Security, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeSecurities) List(ctx context.Context) ([]*models.Security, error) {
	return f.list, f.err
}

func (f *fakeSecurities) Update(ctx context.Context, s *models.Security) (*models.Security, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeSecurities) Delete(ctx context.Context, symbol string) error { return f.err }

type fakeMetrics struct {
	out     *models.Metric
	list    []*models.Metric
	summary *models.PortfolioSummary
	err     error
}

func (f *fakeMetrics) Create(ctx context.Context, m *models.Metric) (*models.Metric, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeMetrics) Get(ctx context.Context, id int64) (*models.Metric, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeMetrics) List(ctx context.Context, portfolioID int64) ([]*models.Metric, error) {
	return f.list, f.err
}

func (f *fakeMetrics) Delete(ctx context.Context, id int64) error { return f.err }

func (f *fakeMetrics) Summary(ctx context.Context, portfolioID int64) (*models.PortfolioSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeQuotes struct {
	out   *marketdata.Quote
	price float64
	err   error
}

func (f *fakeQuotes) LatestClose(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeQuotes) DailyPrice(ctx context.Context, symbol string, day time.Time, pt marketdata.PriceType) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

// recordingLogger captures log entries for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.record("debug", msg, args...)
}
func (l *recordingLogger) Info(ctx context.Context, msg string, args ...any) {
	l.record("info", msg, args...)
}
func (l *recordingLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.record("warn", msg, args...)
}
func (l *recordingLogger) Error(ctx context.Context, msg string, args ...any) {
	l.record("error", msg, args...)
}
func (l *recordingLogger) With(args ...any) logging.Logger { return l }

func (l *recordingLogger) find(level, msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func newTestRouter(s Services) *gin.Engine {
	return newTestRouterWithLogger(s, nopLogger{})
}

func newTestRouterWithLogger(s Services, log logging.Logger) *gin.Engine {
	if s.Users == nil {
		s.Users = &fakeUsers{}
	}
	if s.Portfolios == nil {
		s.Portfolios = &fakePortfolios{}
	}
	if s.Securities == nil {
		s.Securities = &fakeSecurities{}
	}
	if s.Metrics == nil {
		s.Metrics = &fakeMetrics{}
	}
	if s.Quotes == nil {
		s.Quotes = &fakeQuotes{}
	}
	return NewRouter(s, log)
}

func doRequest(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHealth(t *testing.T) {
	r := newTestRouter(Services{})

	w := doRequest(r, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	e := decodeEnvelope(t, w)
	assert.True(t, e.Success)
	assert.Equal(t, "healthy", e.Message)
}

func TestRegister(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{}})

	w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Str0ngPass",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	e := decodeEnvelope(t, w)
	assert.True(t, e.Success)
	assert.Equal(t, "User created successfully", e.Message)
}

func TestRegister_Conflict(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{registerErr: common.ErrorConflict}})

	w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Str0ngPass",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestRegister_Validation(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{registerErr: common.ErrorValidation}})

	w := doRequest(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "a"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogin(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{
		loginOut: &services.LoginResult{Token: "tok123", Roles: []string{models.RoleViewer}},
	}})

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice",
		"password": "Str0ngPass",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	e := decodeEnvelope(t, w)
	assert.Equal(t, "Login successful", e.Message)

	data := e.Data.(map[string]any)
	assert.Equal(t, "tok123", data["token"])
}

func TestLogin_BadCredentials(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{loginErr: common.ErrInvalidCredentials}})

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", decodeEnvelope(t, w).Message)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{tokens: map[string]string{"good": "alice"}}})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t,
				`{"success": false, "message": "invalid or expired token"}`,
				w.Body.String())
		})
	}
}

func TestAuthVerifyAndMe(t *testing.T) {
	users := &fakeUsers{
		tokens:  map[string]string{"good": "alice"},
		profile: &services.Profile{ID: 7, UserName: "alice", Email: "alice@example.com", Roles: []string{models.RoleViewer}},
	}
	r := newTestRouter(Services{Users: users})

	w := doRequest(r, http.MethodGet, "/api/v1/auth/verify", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	e := decodeEnvelope(t, w)
	assert.Equal(t, "Token valid", e.Message)
	assert.Equal(t, "alice", e.Data.(map[string]any)["username"])

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestAdminRoutes_RoleEnforcement(t *testing.T) {
	users := &fakeUsers{
		tokens: map[string]string{"admin-tok": "root", "viewer-tok": "alice"},
		roles: map[string][]string{
			"root":  {models.RoleAdmin},
			"alice": {models.RoleViewer},
		},
		listOut: []*services.Profile{{ID: 1, UserName: "root"}},
	}
	r := newTestRouter(Services{Users: users})

	w := doRequest(r, http.MethodGet, "/api/v1/users", "viewer-tok", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/users", "admin-tok", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/v1/users/1", "admin-tok", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPortfolioCRUD(t *testing.T) {
	now := time.Now().UTC()
	portfolios := &fakePortfolios{
		out:  &models.Portfolio{ID: 3, Name: "Growth", InitialBalance: 1000, CreatedAt: now, UpdatedAt: now},
		list: []*models.Portfolio{{ID: 3, Name: "Growth"}},
	}
	r := newTestRouter(Services{
		Users:      &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Portfolios: portfolios,
	})

	w := doRequest(r, http.MethodPost, "/api/v1/portfolios", "good", gin.H{"name": "Growth", "initial_balance": 1000})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "Growth", data["name"])

	w = doRequest(r, http.MethodGet, "/api/v1/portfolios", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/portfolios/3", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPut, "/api/v1/portfolios/3", "good", gin.H{"name": "Growth II"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/v1/portfolios/3", "good", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPortfolioGet_NotFound(t *testing.T) {
	r := newTestRouter(Services{
		Users:      &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Portfolios: &fakePortfolios{err: common.ErrorNotFound},
	})

	w := doRequest(r, http.MethodGet, "/api/v1/portfolios/42", "good", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioGet_BadID(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{tokens: map[string]string{"good": "alice"}}})

	w := doRequest(r, http.MethodGet, "/api/v1/portfolios/abc", "good", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInstrumentRoutes_AliasedUnderSecurities(t *testing.T) {
	securities := &fakeSecurities{
		out:  &models.Security{Symbol: "IBM", CompanyName: "IBM Corp", SecType: models.SecTypeStock},
		list: []*models.Security{{Symbol: "IBM"}},
	}
	r := newTestRouter(Services{
		Users:      &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Securities: securities,
	})

	for _, prefix := range []string{"/api/v1/instruments", "/api/v1/securities"} {
		w := doRequest(r, http.MethodGet, prefix, "good", nil)
		assert.Equal(t, http.StatusOK, w.Code, prefix)

		w = doRequest(r, http.MethodGet, prefix+"/IBM", "good", nil)
		assert.Equal(t, http.StatusOK, w.Code, prefix)
		data := decodeEnvelope(t, w).Data.(map[string]any)
		assert.Equal(t, "IBM", data["symbol"])
		assert.Equal(t, "S", data["instrument_type"])
	}
}

func TestInstrumentCreate_Conflict(t *testing.T) {
	r := newTestRouter(Services{
		Users:      &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Securities: &fakeSecurities{err: common.ErrorConflict},
	})

	w := doRequest(r, http.MethodPost, "/api/v1/instruments", "good", gin.H{"symbol": "IBM"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInstrumentPrice(t *testing.T) {
	r := newTestRouter(Services{
		Users: &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Quotes: &fakeQuotes{out: &marketdata.Quote{
			Symbol: "IBM",
			Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Price:  188.20,
		}},
	})

	w := doRequest(r, http.MethodGet, "/api/v1/instruments/price/IBM", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "IBM", data["symbol"])
	assert.Equal(t, "2024-03-01", data["date"])
	assert.Equal(t, 188.20, data["price"])
}

func TestInstrumentPrice_ForDate(t *testing.T) {
	r := newTestRouter(Services{
		Users:  &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Quotes: &fakeQuotes{price: 185.03},
	})

	w := doRequest(r, http.MethodGet, "/api/v1/instruments/price/IBM?date=2024-02-29", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "2024-02-29", data["date"])
	assert.Equal(t, 185.03, data["price"])

	w = doRequest(r, http.MethodGet, "/api/v1/instruments/price/IBM?date=bad", "good", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMetricCreate_BadDate(t *testing.T) {
	r := newTestRouter(Services{Users: &fakeUsers{tokens: map[string]string{"good": "alice"}}})

	w := doRequest(r, http.MethodPost, "/api/v1/metrics", "good", gin.H{
		"portfolio_id": 1,
		"date":         "03/01/2024",
		"value":        100.0,
		"metric_type":  "market_value",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, strings.Contains(decodeEnvelope(t, w).Message, "YYYY-MM-DD"))
}

func TestMetricSummaryRoute(t *testing.T) {
	r := newTestRouter(Services{
		Users: &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Metrics: &fakeMetrics{summary: &models.PortfolioSummary{
			PortfolioID: 5,
			TotalReturn: 20,
			MaxDrawdown: 18.18,
		}},
	})

	w := doRequest(r, http.MethodGet, "/api/v1/metrics/portfolio/5/summary", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, float64(5), data["portfolio_id"])
	assert.Equal(t, 20.0, data["total_return"])
	assert.Equal(t, 18.18, data["max_drawdown"])
}

func TestMetricSummary_TooFewPoints_BadRequest(t *testing.T) {
	r := newTestRouter(Services{
		Users: &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Metrics: &fakeMetrics{
			err: fmt.Errorf("%w: need at least 2 data points for calculations", common.ErrorInsufficientData),
		},
	})

	w := doRequest(r, http.MethodGet, "/api/v1/metrics/portfolio/1/summary", "good", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeEnvelope(t, w)
	assert.False(t, e.Success)
	assert.Contains(t, e.Message, "at least 2 data points")
}

func TestInternalError_LoggedWithOperationContext(t *testing.T) {
	log := &recordingLogger{}
	r := newTestRouterWithLogger(Services{
		Users: &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Portfolios: &fakePortfolios{
			err: fmt.Errorf("list portfolios: %w: %v", common.ErrorInternal, errors.New("db down")),
		},
	}, log)

	w := doRequest(r, http.MethodGet, "/api/v1/portfolios", "good", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeEnvelope(t, w).Message)

	entry, ok := log.find("error", "internal error")
	require.True(t, ok, "expected an error log entry")
	assert.Contains(t, fmt.Sprint(entry.args...), "db down")
	assert.Contains(t, fmt.Sprint(entry.args...), "list portfolios")
}

func TestAuthRejection_LoggedAtDebug(t *testing.T) {
	log := &recordingLogger{}
	r := newTestRouterWithLogger(Services{Users: &fakeUsers{}}, log)

	w := doRequest(r, http.MethodGet, "/api/v1/auth/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	entry, ok := log.find("debug", "rejecting request")
	require.True(t, ok, "expected a debug log entry")
	assert.Contains(t, fmt.Sprint(entry.args...), "missing authorization header")
}

func TestMetricList_FilterByPortfolio(t *testing.T) {
	r := newTestRouter(Services{
		Users:   &fakeUsers{tokens: map[string]string{"good": "alice"}},
		Metrics: &fakeMetrics{list: []*models.Metric{{ID: 1, PortfolioID: 5}}},
	})

	w := doRequest(r, http.MethodGet, "/api/v1/metrics?portfolio_id=5", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/metrics?portfolio_id=abc", "good", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
