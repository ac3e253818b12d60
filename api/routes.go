package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rabbit-admin/internal/rabbit"
	"rabbit-admin/internal/repository"
	"rabbit-admin/internal/security"
	"rabbit-admin/internal/service"
)

// MessagePublisher is the slice of rabbit.Publisher the routes need.
type MessagePublisher interface {
	Publish(exchange, routingKey string, body []byte) error
	Close() error
}

// PublisherFactory opens a publisher bound to a vhost. Injected so route
// tests can run without a broker.
type PublisherFactory func(vhost string) (MessagePublisher, error)

// Deps carries the collaborators the route layer dispatches to. Users may
// be nil when no database is configured; user routes then answer 503.
type Deps struct {
	Rabbit       *rabbit.Client
	Users        *service.UserService
	NewPublisher PublisherFactory
	DefaultVHost string
}

func (d Deps) vhostOrDefault(v string) string {
	if v == "" {
		return d.DefaultVHost
	}
	return v
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: map[string]string{"status": "ok"}})
	})

	v1 := r.Group("/v1")

	v1.POST("/users", createUser(deps))
	v1.GET("/users/:id", getUser(deps))
	v1.PUT("/users/:id", updateUser(deps))
	v1.DELETE("/users/:id", deleteUser(deps))

	v1.POST("/vhosts", createVHost(deps))
	v1.GET("/vhosts", readVHost(deps))
	v1.PUT("/vhosts", updateVHost(deps))
	v1.DELETE("/vhosts", deleteVHost(deps))

	v1.POST("/exchanges", createExchange(deps))
	v1.GET("/exchanges", readExchange(deps))
	v1.PUT("/exchanges", updateExchange(deps))
	v1.DELETE("/exchanges", deleteExchange(deps))

	v1.POST("/queues", createQueue(deps))
	v1.GET("/queues", readQueue(deps))
	v1.PUT("/queues", updateQueue(deps))
	v1.DELETE("/queues", deleteQueue(deps))

	v1.POST("/messages", publishMessage(deps))
}

// bindingError answers 422 with the first binding failure, matching the
// validation error shape of the rest of the API.
func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Error:   &APIError{Code: "VALIDATION_ERROR", Message: err.Error()},
	})
}

// brokerError maps a rabbit layer error onto an HTTP status: unsupported
// update and broker-side failures are the client's problem (400-class),
// an unreachable broker is a gateway problem.
func brokerError(c *gin.Context, err error) {
	var unsupported *rabbit.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   &APIError{Code: "UNSUPPORTED_OPERATION", Message: err.Error()},
		})
		return
	}
	var transport *rabbit.TransportError
	if errors.As(err, &transport) && transport.NotFound() {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Error:   &APIError{Code: "NOT_FOUND", Message: err.Error()},
		})
		return
	}
	var conn *rabbit.ConnectionError
	var pub *rabbit.PublishError
	if errors.As(err, &conn) || errors.As(err, &pub) {
		c.JSON(http.StatusBadGateway, APIResponse{
			Success: false,
			Error:   &APIError{Code: "BROKER_UNAVAILABLE", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Error:   &APIError{Code: "BROKER_ERROR", Message: err.Error()},
	})
}

func outcome(c *gin.Context, out *rabbit.Outcome) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    OutcomeResponse{Status: out.Status, Body: out.Body},
	})
}

// --- users ---

func requireUsers(c *gin.Context, deps Deps) bool {
	if deps.Users == nil {
		c.JSON(http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Error:   &APIError{Code: "SERVICE_UNAVAILABLE", Message: "Database connection not available"},
		})
		return false
	}
	return true
}

func userError(c *gin.Context, err error) {
	var violation *security.PolicyViolationError
	switch {
	case errors.As(err, &violation):
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   &APIError{Code: "INVALID_PASSWORD", Message: violation.Reason},
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Error:   &APIError{Code: "USER_NOT_FOUND", Message: err.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Error:   &APIError{Code: "DATABASE_ERROR", Message: "Failed to process user request"},
		})
	}
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   &APIError{Code: "INVALID_PARAMETER", Message: "id must be an integer"},
		})
		return 0, false
	}
	return id, true
}

func createUser(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUsers(c, deps) {
			return
		}
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		user, err := deps.Users.Create(req.Username, req.Password)
		if err != nil {
			userError(c, err)
			return
		}
		c.JSON(http.StatusCreated, APIResponse{Success: true, Data: user})
	}
}

func getUser(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUsers(c, deps) {
			return
		}
		id, ok := userID(c)
		if !ok {
			return
		}
		user, err := deps.Users.Get(id)
		if err != nil {
			userError(c, err)
			return
		}
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: user})
	}
}

func updateUser(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUsers(c, deps) {
			return
		}
		id, ok := userID(c)
		if !ok {
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		user, err := deps.Users.Update(id, req.Username, req.Password)
		if err != nil {
			userError(c, err)
			return
		}
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: user})
	}
}

func deleteUser(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireUsers(c, deps) {
			return
		}
		id, ok := userID(c)
		if !ok {
			return
		}
		if err := deps.Users.Delete(id); err != nil {
			userError(c, err)
			return
		}
		c.JSON(http.StatusOK, APIResponse{Success: true})
	}
}

// --- vhosts ---

func createVHost(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVHostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		out, err := rabbit.NewVHostManager(deps.Rabbit).Create(req.Name, rabbit.Attributes{})
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

func readVHost(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := deps.vhostOrDefault(c.Query("name"))
		out, err := rabbit.NewVHostManager(deps.Rabbit).Read(name)
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

func updateVHost(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateVHostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		_, err := rabbit.NewVHostManager(deps.Rabbit).Update(req.Name, rabbit.Attributes{Name: req.NewName})
		brokerError(c, err)
	}
}

func deleteVHost(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := deps.vhostOrDefault(c.Query("name"))
		out, err := rabbit.NewVHostManager(deps.Rabbit).Delete(name)
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

// --- exchanges ---

func createExchange(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateExchangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		durable := true
		if req.Durable != nil {
			durable = *req.Durable
		}
		m := rabbit.NewExchangeManager(deps.Rabbit, deps.vhostOrDefault(req.VHost))
		out, err := m.Create(req.Name, rabbit.Attributes{Type: req.Type, Durable: durable})
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

func readExchange(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := rabbit.NewExchangeManager(deps.Rabbit, deps.vhostOrDefault(c.Query("vhost")))
		out, err := m.Read(c.Query("name"))
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

func updateExchange(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateExchangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		m := rabbit.NewExchangeManager(deps.Rabbit, deps.vhostOrDefault(req.VHost))
		_, err := m.Update(req.Name, rabbit.Attributes{Name: req.NewName, Type: req.NewType})
		brokerError(c, err)
	}
}

func deleteExchange(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := rabbit.NewExchangeManager(deps.Rabbit, deps.vhostOrDefault(c.Query("vhost")))
		out, err := m.Delete(c.Query("name"))
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

// --- queues ---

func createQueue(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateQueueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		durable := true
		if req.Durable != nil {
			durable = *req.Durable
		}
		m := rabbit.NewQueueManager(deps.Rabbit, deps.vhostOrDefault(req.VHost))
		out, err := m.Create(req.Name, rabbit.Attributes{Durable: durable})
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

func readQueue(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := rabbit.NewQueueManager(deps.Rabbit, deps.vhostOrDefault(c.Query("vhost")))
		out, err := m.Read(c.Query("name"))
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

func updateQueue(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateQueueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		m := rabbit.NewQueueManager(deps.Rabbit, deps.vhostOrDefault(req.VHost))
		_, err := m.Update(req.Name, rabbit.Attributes{Name: req.NewName})
		brokerError(c, err)
	}
}

func deleteQueue(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := rabbit.NewQueueManager(deps.Rabbit, deps.vhostOrDefault(c.Query("vhost")))
		out, err := m.Delete(c.Query("name"))
		if err != nil {
			brokerError(c, err)
			return
		}
		outcome(c, out)
	}
}

// --- messages ---

func publishMessage(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PublishRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}
		pub, err := deps.NewPublisher(deps.vhostOrDefault(req.VHost))
		if err != nil {
			brokerError(c, err)
			return
		}
		defer pub.Close()

		if err := pub.Publish(req.Exchange, req.RoutingKey, []byte(req.Body)); err != nil {
			brokerError(c, err)
			return
		}
		c.JSON(http.StatusOK, APIResponse{
			Success: true,
			Data:    map[string]string{"message": "Message published"},
		})
	}
}
