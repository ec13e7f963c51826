package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/service"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/utils"
)

// maxUploadBytes bounds the multipart form kept in memory per request.
const maxUploadBytes = 32 << 20

type BookHandler struct {
	Catalog *service.CatalogService
	Covers  *utils.CoverStore
}

func NewBookHandler(catalog *service.CatalogService, covers *utils.CoverStore) *BookHandler {
	return &BookHandler{Catalog: catalog, Covers: covers}
}

// POST /livros
func (h *BookHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		utils.JSONError(w, "server error: quantity must be an integer", http.StatusInternalServerError)
		return
	}

	params := models.CreateBookParams{
		Title:     r.FormValue("title"),
		Author:    r.FormValue("author"),
		Quantity:  quantity,
		Publisher: r.FormValue("publisher"),
		AgeRating: models.AgeRating(r.FormValue("ageRating")),
	}
	if subject := r.FormValue("subject"); subject != "" {
		params.Subject = &subject
	}

	image, err := h.saveCover(r)
	if err != nil {
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	params.Image = image

	book, err := h.Catalog.AddBook(r.Context(), params)
	if err != nil {
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, book)
}

// PUT /livros/{id}
//
// Only fields with non-empty values overwrite the stored record. A quantity
// of 0 counts as empty and is ignored; clients cannot zero out stock through
// this route. Long-standing behavior, kept on purpose.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.JSONError(w, "book not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var params models.UpdateBookParams
	if v := r.FormValue("title"); v != "" {
		params.Title = &v
	}
	if v := r.FormValue("author"); v != "" {
		params.Author = &v
	}
	if v := r.FormValue("publisher"); v != "" {
		params.Publisher = &v
	}
	if v := r.FormValue("subject"); v != "" {
		params.Subject = &v
	}
	if v := r.FormValue("ageRating"); v != "" {
		rating := models.AgeRating(v)
		params.AgeRating = &rating
	}
	if v := r.FormValue("quantity"); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			utils.JSONError(w, "server error: quantity must be an integer", http.StatusInternalServerError)
			return
		}
		if quantity != 0 {
			params.Quantity = &quantity
		}
	}

	image, err := h.saveCover(r)
	if err != nil {
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	params.Image = image

	book, err := h.Catalog.UpdateBook(r.Context(), id, params)
	if err != nil {
		if service.IsNotFound(err) {
			utils.JSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		utils.JSONError(w, "server error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, book)
}

// GET /livros
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.ListBooks(r.Context())
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, books)
}

// saveCover stores the optional "imagem" upload and returns its filename, or
// nil when the request carries no file.
func (h *BookHandler) saveCover(r *http.Request) (*string, error) {
	file, header, err := r.FormFile("imagem")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	name, err := h.Covers.Save(file, header)
	if err != nil {
		return nil, err
	}
	return &name, nil
}
