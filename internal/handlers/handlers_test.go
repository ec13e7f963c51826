package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/db/dbtest"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/handlers"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/middleware"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/service"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/utils"
)

type testServer struct {
	router   *mux.Router
	database *db.DB
	uploads  string
}

// newTestServer wires the full route table against a throwaway database,
// mirroring the wiring in cmd/main.go.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database := dbtest.Open(t)
	uploads := t.TempDir()

	covers, err := utils.NewCoverStore(uploads)
	require.NoError(t, err)

	accountHandler := handlers.NewAccountHandler(service.NewAccountService(database))
	bookHandler := handlers.NewBookHandler(service.NewCatalogService(database), covers)
	loanHandler := handlers.NewLoanHandler(service.NewLoanService(database))

	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	r.Use(middleware.JSONMiddleware)
	r.HandleFunc("/registrar", accountHandler.RegisterPatron).Methods("POST")
	r.HandleFunc("/registrar-bibliotecario", accountHandler.RegisterLibrarian).Methods("POST")
	r.HandleFunc("/login", accountHandler.Login).Methods("POST")
	r.HandleFunc("/login-bibliotecario", accountHandler.LoginLibrarian).Methods("POST")
	r.HandleFunc("/livros", bookHandler.AddBook).Methods("POST")
	r.HandleFunc("/livros", bookHandler.GetBooks).Methods("GET")
	r.HandleFunc("/livros/{id}", bookHandler.UpdateBook).Methods("PUT")
	r.HandleFunc("/alugar", loanHandler.Borrow).Methods("POST")
	r.HandleFunc("/devolver/{loanId}", loanHandler.Return).Methods("DELETE")
	r.HandleFunc("/renovar", loanHandler.Renew).Methods("POST")
	r.HandleFunc("/usuario/{accountId}/emprestimos", loanHandler.ListForAccount).Methods("GET")
	r.HandleFunc("/livros-alugados", loanHandler.ListAll).Methods("GET")

	return &testServer{router: r, database: database, uploads: uploads}
}

func (s *testServer) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// doForm sends a multipart form. imageName, when non-empty, attaches a fake
// cover file under the "imagem" field.
func (s *testServer) doForm(t *testing.T, method, path string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("imagem", imageName)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func (s *testServer) registerPatron(t *testing.T, email string) models.Account {
	t.Helper()
	rec := s.doJSON(t, "POST", "/registrar", map[string]string{
		"name": "Maria", "email": email, "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decodeBody[models.Account](t, rec)
}

func (s *testServer) addBook(t *testing.T, title string, quantity int) models.Book {
	t.Helper()
	rec := s.doForm(t, "POST", "/livros", map[string]string{
		"title":     title,
		"author":    "Autor",
		"quantity":  fmt.Sprint(quantity),
		"publisher": "Editora",
		"ageRating": "Livre",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decodeBody[models.Book](t, rec)
}

func TestRegisterPatronRoute(t *testing.T) {
	s := newTestServer(t)

	account := s.registerPatron(t, "maria@example.com")
	assert.NotZero(t, account.ID)

	// The stored hash never leaves the server.
	rec := s.doJSON(t, "POST", "/registrar", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "hash")

	// Missing fields are a 400.
	rec = s.doJSON(t, "POST", "/registrar", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate email is a 400 too.
	rec = s.doJSON(t, "POST", "/registrar", map[string]string{
		"name": "Maria 2", "email": "maria@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterLibrarianRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(t, "POST", "/registrar-bibliotecario", map[string]string{
		"name": "Clara", "email": "clara@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "staffId is required")

	rec = s.doJSON(t, "POST", "/registrar-bibliotecario", map[string]string{
		"name": "Clara", "email": "clara@example.com", "password": "pw", "staffId": "S-7",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	account := decodeBody[models.Account](t, rec)
	require.NotNil(t, account.StaffID)
	assert.Equal(t, "S-7", *account.StaffID)
}

func TestLoginRoutes(t *testing.T) {
	s := newTestServer(t)
	s.registerPatron(t, "maria@example.com")

	rec := s.doJSON(t, "POST", "/login", map[string]string{
		"email": "maria@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.doJSON(t, "POST", "/login", map[string]string{
		"email": "maria@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A patron cannot use the librarian door even with valid credentials.
	rec = s.doJSON(t, "POST", "/login-bibliotecario", map[string]string{
		"email": "maria@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddBookRoute(t *testing.T) {
	s := newTestServer(t)

	book := s.addBook(t, "Capitães da Areia", 3)
	assert.Equal(t, 3, book.Quantity)
	assert.Equal(t, models.RatingGeneral, book.AgeRating)

	rec := s.doJSON(t, "GET", "/livros", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	books := decodeBody[[]models.Book](t, rec)
	require.Len(t, books, 1)
}

func TestAddBookRoute_WithCover(t *testing.T) {
	s := newTestServer(t)

	rec := s.doForm(t, "POST", "/livros", map[string]string{
		"title":     "Vidas Secas",
		"author":    "Graciliano Ramos",
		"quantity":  "2",
		"publisher": "José Olympio",
		"ageRating": "Livre",
	}, "capa.png")
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	book := decodeBody[models.Book](t, rec)
	require.NotNil(t, book.Image)
	assert.True(t, strings.HasSuffix(*book.Image, ".png"), "got %q", *book.Image)

	saved, err := os.ReadFile(filepath.Join(s.uploads, *book.Image))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(saved))
}

func TestAddBookRoute_Failures(t *testing.T) {
	s := newTestServer(t)

	// Non-numeric quantity is reported as a server error on this route.
	rec := s.doForm(t, "POST", "/livros", map[string]string{
		"title": "T", "author": "A", "quantity": "muitos", "publisher": "P", "ageRating": "Livre",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.doForm(t, "POST", "/livros", map[string]string{
		"title": "T", "author": "A", "quantity": "1", "publisher": "P", "ageRating": "PG-13",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpdateBookRoute(t *testing.T) {
	s := newTestServer(t)
	book := s.addBook(t, "Original", 5)

	rec := s.doForm(t, "PUT", fmt.Sprintf("/livros/%d", book.ID), map[string]string{
		"title":    "Renomeado",
		"quantity": "9",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	updated := decodeBody[models.Book](t, rec)
	assert.Equal(t, "Renomeado", updated.Title)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, book.Author, updated.Author)
}

func TestUpdateBookRoute_QuantityZeroIgnored(t *testing.T) {
	s := newTestServer(t)
	book := s.addBook(t, "Estoque", 5)

	rec := s.doForm(t, "PUT", fmt.Sprintf("/livros/%d", book.ID), map[string]string{
		"quantity": "0",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[models.Book](t, rec)
	assert.Equal(t, 5, updated.Quantity, "zero quantity never overwrites stock")
}

func TestUpdateBookRoute_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.doForm(t, "PUT", "/livros/99999", map[string]string{"title": "X"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.doForm(t, "PUT", "/livros/abc", map[string]string{"title": "X"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoanRoutes_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	account := s.registerPatron(t, "maria@example.com")
	book := s.addBook(t, "Emprestável", 1)

	rec := s.doJSON(t, "POST", "/alugar", map[string]int64{
		"accountId": account.ID, "bookId": book.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	loan := decodeBody[models.Loan](t, rec)
	assert.NotZero(t, loan.ID)

	// The only copy is out; a second borrow is refused.
	rec = s.doJSON(t, "POST", "/alugar", map[string]int64{
		"accountId": account.ID, "bookId": book.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doJSON(t, "GET", fmt.Sprintf("/usuario/%d/emprestimos", account.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeBody[[]models.LoanWithBook](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, book.Title, mine[0].Book.Title)

	rec = s.doJSON(t, "GET", "/livros-alugados", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]models.LoanDetail](t, rec)
	require.Len(t, all, 1)
	assert.Equal(t, account.Email, all[0].Account.Email)
	assert.NotContains(t, rec.Body.String(), "hash")

	rec = s.doJSON(t, "POST", "/renovar", map[string]int64{"loanId": loan.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.doJSON(t, "POST", "/renovar", map[string]int64{"loanId": loan.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.doJSON(t, "POST", "/renovar", map[string]int64{"loanId": loan.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "renewal cap is two")

	rec = s.doJSON(t, "DELETE", fmt.Sprintf("/devolver/%d", loan.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "book returned successfully", msg["message"])

	// Copy is back on the shelf.
	rec = s.doJSON(t, "POST", "/alugar", map[string]int64{
		"accountId": account.ID, "bookId": book.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLoanRoutes_Failures(t *testing.T) {
	s := newTestServer(t)
	account := s.registerPatron(t, "maria@example.com")

	// Unknown book.
	rec := s.doJSON(t, "POST", "/alugar", map[string]int64{
		"accountId": account.ID, "bookId": 99999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing ids.
	rec = s.doJSON(t, "POST", "/alugar", map[string]int64{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown loan on return and renew.
	rec = s.doJSON(t, "DELETE", "/devolver/99999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.doJSON(t, "DELETE", "/devolver/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.doJSON(t, "POST", "/renovar", map[string]int64{"loanId": 99999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflightThroughRouter(t *testing.T) {
	s := newTestServer(t)

	// Browsers probe JSON POSTs with OPTIONS before sending them. The
	// router must answer even though the route itself is POST-only.
	for _, path := range []string{"/registrar", "/livros", "/alugar", "/renovar"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, "preflight %s", path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), "preflight %s", path)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	}
}

func TestCrossOriginResponseHeaders(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/livros", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestJSONMiddlewareSetsContentType(t *testing.T) {
	s := newTestServer(t)
	rec := s.doJSON(t, "GET", "/livros", nil)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
