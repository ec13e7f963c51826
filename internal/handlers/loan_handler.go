package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/service"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/utils"
)

type LoanHandler struct {
	Loans *service.LoanService
}

func NewLoanHandler(loans *service.LoanService) *LoanHandler {
	return &LoanHandler{Loans: loans}
}

type borrowRequest struct {
	AccountID int64 `json:"accountId"`
	BookID    int64 `json:"bookId"`
}

type renewRequest struct {
	LoanID int64 `json:"loanId"`
}

// POST /alugar
func (h *LoanHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	loan, err := h.Loans.Borrow(r.Context(), req.AccountID, req.BookID)
	if err != nil {
		loanError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, loan)
}

// DELETE /devolver/{loanId}
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	loanID, err := strconv.ParseInt(mux.Vars(r)["loanId"], 10, 64)
	if err != nil {
		utils.JSONError(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	if err := h.Loans.Return(r.Context(), loanID); err != nil {
		loanError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "book returned successfully"})
}

// POST /renovar
func (h *LoanHandler) Renew(w http.ResponseWriter, r *http.Request) {
	var req renewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.Loans.Renew(r.Context(), req.LoanID); err != nil {
		loanError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "loan renewed successfully"})
}

// GET /usuario/{accountId}/emprestimos
func (h *LoanHandler) ListForAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(mux.Vars(r)["accountId"], 10, 64)
	if err != nil {
		utils.JSONError(w, "invalid account id", http.StatusBadRequest)
		return
	}

	loans, err := h.Loans.ListForAccount(r.Context(), accountID)
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, loans)
}

// GET /livros-alugados
func (h *LoanHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Loans.ListAllActive(r.Context())
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, loans)
}

// loanError maps loan lifecycle failures the way the routes have always
// reported them: every business-rule outcome is a 400.
func loanError(w http.ResponseWriter, err error) {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindNotFound, service.KindConflict:
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
	default:
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
	}
}
