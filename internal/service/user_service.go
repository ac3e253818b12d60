package service

import (
	"rabbit-admin/internal/models"
	"rabbit-admin/internal/security"
)

// UserStore is the persistence contract the service needs; satisfied by
// repository.Users.
type UserStore interface {
	Create(username, passwordHash string) (*models.User, error)
	Get(id int64) (*models.User, error)
	Update(id int64, username, passwordHash string) (*models.User, error)
	Delete(id int64) error
}

// UserService enforces the password policy and hashing in front of the
// user store.
type UserService struct {
	store     UserStore
	validator *security.Validator
	policy    security.Policy
}

func NewUserService(store UserStore, validator *security.Validator, policy security.Policy) *UserService {
	return &UserService{store: store, validator: validator, policy: policy}
}

// Create validates the password against the policy, hashes it and inserts
// the user. A policy failure comes back as *security.PolicyViolationError.
func (s *UserService) Create(username, password string) (*models.User, error) {
	if err := s.validator.Validate(password, s.policy); err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.Create(username, hash)
}

func (s *UserService) Get(id int64) (*models.User, error) {
	return s.store.Get(id)
}

// Update changes username and/or password; empty strings leave the field
// as-is. A new password goes through the same policy and hashing as Create.
func (s *UserService) Update(id int64, username, password string) (*models.User, error) {
	hash := ""
	if password != "" {
		if err := s.validator.Validate(password, s.policy); err != nil {
			return nil, err
		}
		var err error
		if hash, err = security.HashPassword(password); err != nil {
			return nil, err
		}
	}
	return s.store.Update(id, username, hash)
}

func (s *UserService) Delete(id int64) error {
	return s.store.Delete(id)
}
