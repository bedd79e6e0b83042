package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/auth"
	"github.com/hyperjump/reelmatch/internal/models"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var input models.UserInput
	if err := decodeAndValidate(r, &input); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(input.Password, s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("signup: hash password failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	user := &models.User{Username: input.Username, Email: input.Email, PasswordHash: hash}
	if err := s.Storage.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.respondError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error("signup: create user failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	s.respondToken(w, http.StatusCreated, "User created successfully", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeAndValidate(r, &creds); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.Storage.GetUserByEmail(r.Context(), creds.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("login: load user failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, creds.Password) {
		s.respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	s.respondToken(w, http.StatusOK, "Login successful", user)
}

func (s *Server) respondToken(w http.ResponseWriter, status int, message string, user *models.User) {
	token, err := s.JWT.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("issue token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	s.respondMessage(w, status, message, map[string]interface{}{"token": token, "user": user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	s.respondJSON(w, http.StatusOK, user)
}
