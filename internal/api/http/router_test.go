package http

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/payroll-registry/internal/api/http/handlers"
	"github.com/spec-kit/payroll-registry/internal/auth"
	"github.com/spec-kit/payroll-registry/internal/config"
	"github.com/spec-kit/payroll-registry/internal/events"
	"github.com/spec-kit/payroll-registry/internal/observability"
	"github.com/spec-kit/payroll-registry/internal/repository"
	"github.com/spec-kit/payroll-registry/internal/service"
)

type identity struct {
	priv    ed25519.PrivateKey
	pubHex  string
	address string
}

func newIdentity(seedByte byte) identity {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = seedByte
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	addr, err := auth.AddressFromPublicKey(pub)
	if err != nil {
		panic(err)
	}
	return identity{priv: priv, pubHex: hex.EncodeToString(pub), address: addr.String()}
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type RouterSuite struct {
	suite.Suite
	app     *fiber.App
	metrics *observability.Metrics
	alice   identity
	bob     identity
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	cfg := config.Config{
		App:  config.AppConfig{Name: "payroll-registry-test", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "router-test-secret", AccessTokenTTLMinutes: 5, ChallengeTTLSeconds: 60},
	}
	logger := zap.NewNop()
	s.metrics = observability.NewMetrics()

	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Notification, service.NotificationSinks{Metrics: s.metrics}).RegisterHandlers()

	registry := service.NewRegistryService(service.RegistryDependencies{
		Store:      store,
		Authorizer: auth.ContextAuthorizer{},
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg, service.AuthDependencies{ChallengeRepo: repository.NewMemoryChallengeRepository()})

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, s.metrics, cfg.App.RequestTimeout())
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{"store": store}),
		Auth:           handlers.NewAuthHandler(authService),
		Registry:       handlers.NewRegistryHandler(registry),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		Metrics:        s.metrics,
	})

	s.alice = newIdentity(1)
	s.bob = newIdentity(2)
}

func (s *RouterSuite) do(method, path string, body any, headers map[string]string) (int, apiResponse) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *RouterSuite) login(id identity) string {
	status, resp := s.do(http.MethodPost, "/auth/challenge", map[string]string{"public_key": id.pubHex}, nil)
	s.Require().Equal(http.StatusCreated, status)
	var challenge struct {
		Address string `json:"address"`
		Nonce   string `json:"nonce"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &challenge))
	s.Require().Equal(id.address, challenge.Address)

	status, resp = s.do(http.MethodPost, "/auth/token", map[string]string{
		"public_key": id.pubHex,
		"nonce":      challenge.Nonce,
		"signature":  auth.SignChallenge(id.priv, challenge.Nonce),
	}, nil)
	s.Require().Equal(http.StatusOK, status)
	var token struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &token))
	return token.Token
}

func bearer(token string) map[string]string {
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func (s *RouterSuite) initialize(id identity) string {
	token := s.login(id)
	status, resp := s.do(http.MethodPost, "/registry/initialize", map[string]string{"owner": id.address}, bearer(token))
	s.Require().Equal(http.StatusCreated, status, resp.Error)
	return token
}

func (s *RouterSuite) TestHealth() {
	status, _ := s.do(http.MethodGet, "/health/live", nil, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/health/ready", nil, nil)
	s.Equal(http.StatusOK, status)
}

func (s *RouterSuite) TestOwnerBeforeInitialize() {
	status, resp := s.do(http.MethodGet, "/registry/owner", nil, nil)
	s.Equal(http.StatusConflict, status)
	s.Require().NotNil(resp.Error)
	s.Equal("NOT_INITIALIZED", resp.Error.Code)
}

func (s *RouterSuite) TestInitializeRequiresToken() {
	status, resp := s.do(http.MethodPost, "/registry/initialize", map[string]string{"owner": s.alice.address}, nil)
	s.Equal(http.StatusUnauthorized, status)
	s.Require().NotNil(resp.Error)
	s.Equal("UNAUTHORIZED", resp.Error.Code)

	status, resp = s.do(http.MethodPost, "/registry/initialize", map[string]string{"owner": s.alice.address}, bearer("garbage"))
	s.Equal(http.StatusUnauthorized, status)
	s.Require().NotNil(resp.Error)
}

func (s *RouterSuite) TestStaffLifecycle() {
	token := s.initialize(s.alice)
	h := strings.Repeat("11", 32)

	status, resp := s.do(http.MethodGet, "/registry/owner", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"owner":"`+s.alice.address+`"}`, string(resp.Data))

	status, resp = s.do(http.MethodPost, "/registry/staff", map[string]string{"staff_hash": h}, bearer(token))
	s.Require().Equal(http.StatusCreated, status, resp.Error)

	status, resp = s.do(http.MethodPost, "/registry/staff", map[string]string{"staff_hash": h}, bearer(token))
	s.Equal(http.StatusConflict, status)
	s.Equal("ALREADY_REGISTERED", resp.Error.Code)

	status, resp = s.do(http.MethodPost, "/registry/staff", map[string]string{"staff_hash": strings.Repeat("00", 32)}, bearer(token))
	s.Equal(http.StatusBadRequest, status)
	s.Equal("INVALID_HASH", resp.Error.Code)

	status, resp = s.do(http.MethodGet, "/registry/staff/"+h+"/active", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"hash":"`+h+`","value":true}`, string(resp.Data))

	status, resp = s.do(http.MethodPost, "/registry/staff/"+h+"/revoke", nil, bearer(token))
	s.Require().Equal(http.StatusOK, status, resp.Error)

	status, resp = s.do(http.MethodGet, "/registry/staff/"+h, nil, nil)
	s.Require().Equal(http.StatusOK, status)
	var record struct {
		StaffHash    string `json:"staff_hash"`
		RegisteredBy string `json:"registered_by"`
		IsActive     bool   `json:"is_active"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &record))
	s.Equal(h, record.StaffHash)
	s.Equal(s.alice.address, record.RegisteredBy)
	s.False(record.IsActive)

	status, resp = s.do(http.MethodGet, "/registry/staff/"+h+"/registered", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"hash":"`+h+`","value":true}`, string(resp.Data))

	status, resp = s.do(http.MethodGet, "/registry/staff/count", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"total":1}`, string(resp.Data))

	status, resp = s.do(http.MethodGet, "/registry/staff", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"total":1,"hashes":["`+h+`"]}`, string(resp.Data))

	status, resp = s.do(http.MethodGet, "/registry/staff/"+strings.Repeat("22", 32), nil, nil)
	s.Equal(http.StatusNotFound, status)
	s.Equal("NOT_FOUND", resp.Error.Code)
}

func (s *RouterSuite) TestBatches() {
	token := s.initialize(s.alice)
	h := "0x" + strings.Repeat("ab", 32)

	status, resp := s.do(http.MethodPost, "/registry/batches", map[string]any{"batch_hash": h, "staff_count": 0}, bearer(token))
	s.Equal(http.StatusBadRequest, status)
	s.Equal("INVALID_STAFF_COUNT", resp.Error.Code)

	status, resp = s.do(http.MethodPost, "/registry/batches", map[string]any{"batch_hash": h, "staff_count": -1}, bearer(token))
	s.Equal(http.StatusBadRequest, status)
	s.Equal("VALIDATION_FAILED", resp.Error.Code)

	status, resp = s.do(http.MethodPost, "/registry/batches", map[string]any{"batch_hash": h, "staff_count": 10}, bearer(token))
	s.Require().Equal(http.StatusCreated, status, resp.Error)

	status, resp = s.do(http.MethodPost, "/registry/batches", map[string]any{"batch_hash": h, "staff_count": 5}, bearer(token))
	s.Equal(http.StatusConflict, status)
	s.Equal("ALREADY_RECORDED", resp.Error.Code)

	status, resp = s.do(http.MethodGet, "/registry/batches/"+h, nil, nil)
	s.Require().Equal(http.StatusOK, status)
	var batch struct {
		StaffCount uint32 `json:"staff_count"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &batch))
	s.Equal(uint32(10), batch.StaffCount)

	status, resp = s.do(http.MethodGet, "/registry/batches/"+h+"/recorded", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"hash":"`+strings.Repeat("ab", 32)+`","value":true}`, string(resp.Data))

	status, resp = s.do(http.MethodGet, "/registry/batches/count", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"total":1}`, string(resp.Data))

	status, _ = s.do(http.MethodGet, "/registry/batches", nil, nil)
	s.Equal(http.StatusOK, status)
}

func (s *RouterSuite) TestMalformedHash() {
	status, resp := s.do(http.MethodGet, "/registry/staff/nothex/active", nil, nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("VALIDATION_FAILED", resp.Error.Code)
}

func (s *RouterSuite) TestTransferOwnership() {
	aliceToken := s.initialize(s.alice)
	bobToken := s.login(s.bob)

	s.Run("without the new owner's consent", func() {
		status, resp := s.do(http.MethodPost, "/registry/owner/transfer", map[string]string{"new_owner": s.bob.address}, bearer(aliceToken))
		s.Equal(http.StatusUnauthorized, status)
		s.Equal("UNAUTHORIZED", resp.Error.Code)
	})

	s.Run("new owner alone", func() {
		status, _ := s.do(http.MethodPost, "/registry/owner/transfer", map[string]string{"new_owner": s.bob.address}, bearer(bobToken))
		s.Equal(http.StatusUnauthorized, status)
	})

	s.Run("cosigned transfer", func() {
		headers := bearer(aliceToken)
		headers[auth.CosignerHeader] = "Bearer " + bobToken
		status, resp := s.do(http.MethodPost, "/registry/owner/transfer", map[string]string{"new_owner": s.bob.address}, headers)
		s.Require().Equal(http.StatusOK, status, resp.Error)

		status, resp = s.do(http.MethodGet, "/registry/owner", nil, nil)
		s.Require().Equal(http.StatusOK, status)
		s.JSONEq(`{"owner":"`+s.bob.address+`"}`, string(resp.Data))
	})

	s.Run("old owner is locked out", func() {
		status, _ := s.do(http.MethodPost, "/registry/staff", map[string]string{"staff_hash": strings.Repeat("33", 32)}, bearer(aliceToken))
		s.Equal(http.StatusUnauthorized, status)

		status, _ = s.do(http.MethodPost, "/registry/staff", map[string]string{"staff_hash": strings.Repeat("33", 32)}, bearer(bobToken))
		s.Equal(http.StatusCreated, status)
	})
}

func (s *RouterSuite) TestUnknownRoute() {
	status, resp := s.do(http.MethodGet, "/nope", nil, nil)
	s.Equal(http.StatusNotFound, status)
	s.Require().NotNil(resp.Error)
	s.Equal("NOT_FOUND", resp.Error.Code)
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.initialize(s.alice)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `payroll_registry_events_total{type="registry_initialized"} 1`)
}

func (s *RouterSuite) scrapeMetrics() (int, string) {
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, string(body)
}

func (s *RouterSuite) TestMetricsLabelRoutesNotRawPaths() {
	for i := 0; i < 50; i++ {
		status, _ := s.do(http.MethodGet, fmt.Sprintf("/registry/staff/%064x", i+1), nil, nil)
		s.Equal(http.StatusNotFound, status)
	}
	s.do(http.MethodGet, fmt.Sprintf("/registry/batches/%064x", 1), nil, nil)
	s.do(http.MethodGet, fmt.Sprintf("/registry/batches/%064x", 2), nil, nil)
	for i := 0; i < 3; i++ {
		status, _ := s.do(http.MethodGet, fmt.Sprintf("/nope-%d/xxxxxxxx", i), nil, nil)
		s.Equal(http.StatusNotFound, status)
	}

	requests, err := testutil.GatherAndCount(s.metrics.Registry(), "payroll_registry_http_requests_total")
	s.Require().NoError(err)
	s.Equal(3, requests)

	errs, err := testutil.GatherAndCount(s.metrics.Registry(), "payroll_registry_http_errors_total")
	s.Require().NoError(err)
	s.Equal(3, errs)

	status, body := s.scrapeMetrics()
	s.Require().Equal(http.StatusOK, status)
	s.Contains(body, `payroll_registry_http_errors_total{code="NOT_FOUND",method="GET",path="/registry/staff/:hash"} 50`)
	s.Contains(body, `payroll_registry_http_errors_total{code="NOT_FOUND",method="GET",path="/registry/batches/:hash"} 2`)
	s.Contains(body, `payroll_registry_http_errors_total{code="NOT_FOUND",method="GET",path="unmatched"} 3`)
	s.NotContains(body, "/nope-")
	s.NotContains(body, fmt.Sprintf("%064x", 1))

	status, _ = s.scrapeMetrics()
	s.Equal(http.StatusOK, status)
}
