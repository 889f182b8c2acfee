package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/civic-engine/internal/auth"
	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/respond"
	"github.com/hongminglow/civic-engine/internal/models/dto"
)

// AuthHandler owns the public register/login endpoints.
type AuthHandler struct {
	engine *economy.Engine
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(engine *economy.Engine, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{engine: engine, tokens: tokens}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON payload")
		return
	}
	if err := validateCredentials(req.Username, req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to hash password")
		return
	}

	created, err := h.engine.CreateUser(r.Context(), req.Username, req.Email, passwordHash)
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user created", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "invalid_input", "identifier and password are required")
		return
	}

	user, err := h.engine.UserByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, economy.ErrUserNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		log.Printf("login: fetch user %q: %v", req.Identifier, err)
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func validateCredentials(username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
		return errors.New("username and email are required")
	}
	if len(strings.TrimSpace(password)) < 8 || !utf8.ValidString(password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
