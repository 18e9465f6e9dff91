package handlers

import (
	"context"
	"net/http"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpUser    models.User
	signUpErr     error
	genTokenToken string
	genTokenUser  models.User
	genTokenErr   error
	parseID       int
	parseErr      error
	principal     models.Principal
	principalErr  error

	lastSignUpName     string
	lastSignUpEmail    string
	lastSignUpPassword string
	lastGenEmail       string
	lastGenPassword    string
	lastParseToken     string
	signUpCalls        int
}

func (m *mockAuth) SignUp(_ context.Context, name, email, password string) (models.User, error) {
	m.signUpCalls++
	m.lastSignUpName, m.lastSignUpEmail, m.lastSignUpPassword = name, email, password
	return m.signUpUser, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, email, password string) (string, models.User, error) {
	m.lastGenEmail = email
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenUser, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) ResolvePrincipal(_ context.Context, userID int) (models.Principal, error) {
	return m.principal, m.principalErr
}

type mockStates struct {
	list    []models.BatterySnapshot
	details models.BatteryDetails
	err     error

	lastPrincipal models.Principal
	lastID        string
}

func (m *mockStates) ListCurrentStates(_ context.Context, p models.Principal) ([]models.BatterySnapshot, error) {
	m.lastPrincipal = p
	return m.list, m.err
}
func (m *mockStates) GetBattery(_ context.Context, p models.Principal, id string) (models.BatteryDetails, error) {
	m.lastPrincipal, m.lastID = p, id
	return m.details, m.err
}

type mockHistory struct {
	points []service.SeriesPoint
	err    error

	lastID     string
	lastMetric string
	lastHours  int
	calls      int
}

func (m *mockHistory) GetHistory(_ context.Context, _ models.Principal, id, metric string, hours int) ([]service.SeriesPoint, error) {
	m.calls++
	m.lastID, m.lastMetric, m.lastHours = id, metric, hours
	return m.points, m.err
}

type mockEventLog struct {
	entries []models.LogEntry
	err     error

	lastID    string
	lastType  string
	lastEvent int64
	markCalls int
}

func (m *mockEventLog) GetDeviceLog(_ context.Context, _ models.Principal, id string) ([]models.LogEntry, error) {
	m.lastID = id
	return m.entries, m.err
}
func (m *mockEventLog) GetNotifications(context.Context, models.Principal) ([]models.LogEntry, error) {
	return m.entries, m.err
}
func (m *mockEventLog) MarkRead(_ context.Context, _ models.Principal, typ string, id int64) error {
	m.markCalls++
	m.lastType, m.lastEvent = typ, id
	return m.err
}

type mockRoutes struct {
	points []models.RoutePoint
	err    error
}

func (m *mockRoutes) GetRoute(context.Context, models.Principal, string) ([]models.RoutePoint, error) {
	return m.points, m.err
}

type mockExport struct {
	csv []byte
	err error
}

func (m *mockExport) ExportReadings(context.Context, models.Principal, string) ([]byte, error) {
	return m.csv, m.err
}

type mockPinger struct{ err error }

func (m mockPinger) PingContext(context.Context) error { return m.err }

// ---- Shared Test Helpers ----

var testPrincipal = models.Principal{ID: 2, Role: models.RoleUser, Name: "Regular User", Email: "user@bms.com"}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// signedIn fills the auth slot so that every request resolves to testPrincipal.
func signedIn(s *service.Service) *service.Service {
	if s.Authorization == nil {
		s.Authorization = &mockAuth{parseID: testPrincipal.ID, principal: testPrincipal}
	}
	return s
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
