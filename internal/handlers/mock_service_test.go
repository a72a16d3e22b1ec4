package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"air_purifier/internal/appliance"
	"air_purifier/internal/models"
	"air_purifier/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockPurifier struct {
	values      map[string]any
	getErr      error
	setErr      error
	identifyErr error

	lastSetName   string
	lastSetValue  any
	setCalls      int
	identifyCalls int
}

func (m *mockPurifier) Name() string { return "Test Purifier" }
func (m *mockPurifier) Identity() models.Identity {
	return models.Identity{Manufacturer: appliance.Manufacturer, Model: appliance.Model}
}
func (m *mockPurifier) Get(_ context.Context, name string) (any, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[name]
	if !ok {
		return nil, appliance.ErrUnknownProperty
	}
	return v, nil
}
func (m *mockPurifier) Set(_ context.Context, name string, value any) error {
	m.setCalls++
	m.lastSetName = name
	m.lastSetValue = value
	return m.setErr
}
func (m *mockPurifier) Identify(context.Context) error {
	m.identifyCalls++
	return m.identifyErr
}

type mockMonitoring struct {
	state models.PurifierState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.PurifierState, error) {
	return m.state, m.err
}
func (m *mockMonitoring) Characteristics() []appliance.Descriptor {
	return appliance.Descriptors()
}

type mockEventLog struct {
	resp     []models.PurifierEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.PurifierEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// mockWatcher hands published snapshots straight to subscribers.
type mockWatcher struct {
	mu        sync.Mutex
	next      int
	listeners map[int]service.StateListener
}

func (m *mockWatcher) Run(context.Context, time.Duration) {}

func (m *mockWatcher) Subscribe(l service.StateListener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listeners == nil {
		m.listeners = make(map[int]service.StateListener)
	}
	m.next++
	id := m.next
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *mockWatcher) publish(st models.PurifierState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.listeners {
		l(st)
	}
}

func (m *mockWatcher) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
