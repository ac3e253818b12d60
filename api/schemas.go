package api

// Request and response schemas for the v1 API.

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest leaves a field unchanged when it is empty.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateVHostRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateVHostRequest struct {
	Name    string `json:"name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

type CreateExchangeRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required"`
	VHost   string `json:"vhost"`
	Durable *bool  `json:"durable"` // defaults to true
}

type UpdateExchangeRequest struct {
	Name    string `json:"name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
	NewType string `json:"new_type"`
	VHost   string `json:"vhost"`
}

type CreateQueueRequest struct {
	Name    string `json:"name" binding:"required"`
	VHost   string `json:"vhost"`
	Durable *bool  `json:"durable"` // defaults to true
}

type UpdateQueueRequest struct {
	Name    string `json:"name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
	VHost   string `json:"vhost"`
}

type PublishRequest struct {
	VHost      string `json:"vhost"`
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
	Body       string `json:"body" binding:"required"`
}

// OutcomeResponse mirrors rabbit.Outcome for API consumers.
type OutcomeResponse struct {
	Status int            `json:"status"`
	Body   map[string]any `json:"body,omitempty"`
}
