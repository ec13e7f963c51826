package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"

	"github.com/TurmaJB/Biblioteca-JB-online/configs"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/handlers"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/middleware"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/service"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/utils"
)

func main() {
	cfg := configs.LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	database, err := db.Open(db.Config{
		DriverName: cfg.DBDriver,
		DSN:        cfg.DSN(),
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	covers, err := utils.NewCoverStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("cover store init failed: %v", err)
	}

	accountService := service.NewAccountService(database)
	catalogService := service.NewCatalogService(database)
	loanService := service.NewLoanService(database)

	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware)

	// mux runs Use middleware only on matched routes, and the API routes
	// match specific methods. Browsers probe writes with OPTIONS first, so
	// match preflights explicitly; the CORS middleware answers them.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})

	// Book covers are served straight from the upload directory.
	r.PathPrefix("/img/capas-livro/").Handler(
		http.StripPrefix("/img/capas-livro/", http.FileServer(http.Dir(cfg.UploadDir))))

	accountHandler := &handlers.AccountHandler{Accounts: accountService}
	bookHandler := &handlers.BookHandler{Catalog: catalogService, Covers: covers}
	loanHandler := &handlers.LoanHandler{Loans: loanService}

	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.JSONMiddleware)

	api.HandleFunc("/registrar", accountHandler.RegisterPatron).Methods("POST")
	api.HandleFunc("/registrar-bibliotecario", accountHandler.RegisterLibrarian).Methods("POST")
	api.HandleFunc("/login", accountHandler.Login).Methods("POST")
	api.HandleFunc("/login-bibliotecario", accountHandler.LoginLibrarian).Methods("POST")

	api.HandleFunc("/livros", bookHandler.AddBook).Methods("POST")
	api.HandleFunc("/livros", bookHandler.GetBooks).Methods("GET")
	api.HandleFunc("/livros/{id}", bookHandler.UpdateBook).Methods("PUT")

	api.HandleFunc("/alugar", loanHandler.Borrow).Methods("POST")
	api.HandleFunc("/devolver/{loanId}", loanHandler.Return).Methods("DELETE")
	api.HandleFunc("/renovar", loanHandler.Renew).Methods("POST")
	api.HandleFunc("/usuario/{accountId}/emprestimos", loanHandler.ListForAccount).Methods("GET")
	api.HandleFunc("/livros-alugados", loanHandler.ListAll).Methods("GET")

	var server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("Server starting on port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Println("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server shut down.")
}
