package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/service"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/utils"
)

type AccountHandler struct {
	Accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	StaffID  string `json:"staffId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /registrar
func (h *AccountHandler) RegisterPatron(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	account, err := h.Accounts.RegisterPatron(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		registerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, account)
}

// POST /registrar-bibliotecario
func (h *AccountHandler) RegisterLibrarian(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	account, err := h.Accounts.RegisterLibrarian(r.Context(), req.Name, req.Email, req.Password, req.StaffID)
	if err != nil {
		registerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, account)
}

// POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.Accounts.AuthenticatePatron)
}

// POST /login-bibliotecario
func (h *AccountHandler) LoginLibrarian(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.Accounts.AuthenticateLibrarian)
}

type authenticateFunc func(ctx context.Context, email, password string) (*models.Account, error)

func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request, authenticate authenticateFunc) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	account, err := authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if service.IsAuth(err) {
			utils.JSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		utils.JSONError(w, "server error", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, account)
}

func registerError(w http.ResponseWriter, err error) {
	if service.IsValidation(err) {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSONError(w, "server error", http.StatusInternalServerError)
}
