package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rabbit-admin/internal/rabbit"
	"rabbit-admin/internal/repository"
	"rabbit-admin/internal/security"
	"rabbit-admin/internal/service"
)

// stubPublisher records publishes and closes.
type stubPublisher struct {
	published  [][3]string
	closed     int
	publishErr error
}

func (s *stubPublisher) Publish(exchange, routingKey string, body []byte) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, [3]string{exchange, routingKey, string(body)})
	return nil
}

func (s *stubPublisher) Close() error {
	s.closed++
	return nil
}

func newRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, deps)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp APIResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func brokerDeps(t *testing.T, handler http.Handler) Deps {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return Deps{
		Rabbit:       rabbit.NewClient(srv.URL, rabbit.Credentials{Username: "guest", Password: "guest"}, 0),
		DefaultVHost: "/",
	}
}

func TestCreateExchange(t *testing.T) {
	var gotURI string
	var gotBody map[string]any
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/exchanges",
		`{"name":"orders","type":"direct","durable":true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "/exchanges/%2F/orders", gotURI)
	assert.Equal(t, "direct", gotBody["type"])
	assert.Equal(t, true, gotBody["durable"])
}

func TestCreateExchange_DurableDefaultsTrue(t *testing.T) {
	var gotBody map[string]any
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	r := newRouter(t, deps)

	w, _ := doJSON(t, r, http.MethodPost, "/v1/exchanges", `{"name":"orders","type":"fanout"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, gotBody["durable"])
}

func TestCreateExchange_MissingFields(t *testing.T) {
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("broker must not be called on a binding failure")
	}))
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/exchanges", `{"name":"orders"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestUpdateExchange_Unsupported(t *testing.T) {
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("update must never reach the broker")
	}))
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPut, "/v1/exchanges",
		`{"name":"orders","new_name":"orders2"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_OPERATION", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "not supported")
}

func TestReadExchange_NotFound(t *testing.T) {
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/exchanges?name=ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestReadExchange_BrokerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	deps := Deps{
		Rabbit:       rabbit.NewClient(srv.URL, rabbit.Credentials{Username: "guest", Password: "guest"}, 0),
		DefaultVHost: "/",
	}
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/exchanges?name=orders", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BROKER_ERROR", resp.Error.Code)
}

func TestVHostRoutes(t *testing.T) {
	var gotMethod, gotURI string
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotURI = r.Method, r.RequestURI
		w.WriteHeader(http.StatusNoContent)
	}))
	r := newRouter(t, deps)

	w, _ := doJSON(t, r, http.MethodPost, "/v1/vhosts", `{"name":"staging"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/vhosts/staging", gotURI)

	// Default vhost is the encoded token on the wire.
	w, _ = doJSON(t, r, http.MethodGet, "/v1/vhosts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/vhosts/%2F", gotURI)

	w, resp := doJSON(t, r, http.MethodPut, "/v1/vhosts", `{"name":"staging","new_name":"prod"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_OPERATION", resp.Error.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/v1/vhosts?name=staging", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/vhosts/staging", gotURI)
}

func TestQueueRoutes(t *testing.T) {
	var gotURI string
	var gotBody map[string]any
	deps := brokerDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	r := newRouter(t, deps)

	w, _ := doJSON(t, r, http.MethodPost, "/v1/queues", `{"name":"tasks","vhost":"staging","durable":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/queues/staging/tasks", gotURI)
	assert.Equal(t, false, gotBody["durable"])

	w, resp := doJSON(t, r, http.MethodPut, "/v1/queues", `{"name":"tasks","new_name":"jobs"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_OPERATION", resp.Error.Code)
}

func TestPublishMessage(t *testing.T) {
	pub := &stubPublisher{}
	var gotVHost string
	deps := Deps{
		DefaultVHost: "/",
		NewPublisher: func(vhost string) (MessagePublisher, error) {
			gotVHost = vhost
			return pub, nil
		},
	}
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/messages",
		`{"exchange":"orders","routing_key":"created","body":"hello"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "/", gotVHost)
	require.Len(t, pub.published, 1)
	assert.Equal(t, [3]string{"orders", "created", "hello"}, pub.published[0])
	assert.Equal(t, 1, pub.closed, "publisher must be closed after the request")
}

func TestPublishMessage_ConnectFails(t *testing.T) {
	deps := Deps{
		DefaultVHost: "/",
		NewPublisher: func(vhost string) (MessagePublisher, error) {
			return nil, &rabbit.ConnectionError{Addr: "localhost:5672", Err: errors.New("refused")}
		},
	}
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/messages", `{"body":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BROKER_UNAVAILABLE", resp.Error.Code)
}

func TestPublishMessage_PublishFails(t *testing.T) {
	pub := &stubPublisher{publishErr: &rabbit.PublishError{Exchange: "orders", Err: errors.New("channel gone")}}
	deps := Deps{
		DefaultVHost: "/",
		NewPublisher: func(vhost string) (MessagePublisher, error) { return pub, nil },
	}
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/messages", `{"exchange":"orders","body":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BROKER_UNAVAILABLE", resp.Error.Code)
	assert.Equal(t, 1, pub.closed, "publisher must be closed on the error path too")
}

// usersDeps wires the user routes over a sqlmock-backed repository.
func usersDeps(t *testing.T) (Deps, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewUserService(
		repository.NewUsers(db),
		security.NewValidator(nil),
		security.Policy{MinLength: 8},
	)
	return Deps{Users: svc, DefaultVHost: "/"}, mock
}

func TestCreateUser(t *testing.T) {
	deps, mock := usersDeps(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	r := newRouter(t, deps)
	w, resp := doJSON(t, r, http.MethodPost, "/v1/users",
		`{"username":"alice","password":"long-enough-pass"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	assert.NoError(t, mock.ExpectationsWereMet())

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
}

func TestCreateUser_WeakPassword(t *testing.T) {
	deps, mock := usersDeps(t)
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/users",
		`{"username":"alice","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PASSWORD", resp.Error.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	deps, mock := usersDeps(t)
	mock.ExpectQuery(`SELECT id, username, password, created_at`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	r := newRouter(t, deps)
	w, resp := doJSON(t, r, http.MethodGet, "/v1/users/99", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)
}

func TestUserRoutes_NoDatabase(t *testing.T) {
	r := newRouter(t, Deps{DefaultVHost: "/"})

	w, resp := doJSON(t, r, http.MethodPost, "/v1/users",
		`{"username":"alice","password":"long-enough-pass"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}

func TestGetUser_BadID(t *testing.T) {
	deps, _ := usersDeps(t)
	r := newRouter(t, deps)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}
