package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TurmaJB/Biblioteca-JB-online/configs"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(createLibrarianCmd(), importBooksCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDatabase() (*db.DB, error) {
	cfg := configs.LoadConfig()
	return db.Open(db.Config{
		DriverName: cfg.DBDriver,
		DSN:        cfg.DSN(),
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func createLibrarianCmd() *cobra.Command {
	var name, email, staffID string

	cmd := &cobra.Command{
		Use:   "create-librarian",
		Short: "Register a librarian account without going through the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase()
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer database.Close()

			password, err := readPassword(fmt.Sprintf("Enter password for %s: ", email))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			accounts := service.NewAccountService(database)
			account, err := accounts.RegisterLibrarian(context.Background(), name, email, password, staffID)
			if err != nil {
				return err
			}

			fmt.Printf("Librarian '%s' created with ID %d\n", account.Name, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "librarian full name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&staffID, "staff-id", "", "staff identifier")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("staff-id")

	return cmd
}

func importBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-books <file.csv>",
		Short: "Bulk-load books from a CSV file",
		Long: `Bulk-load books from a CSV file.

Expected columns: title, author, quantity, publisher, subject, age_rating.
A header row is detected and skipped when the quantity column is not numeric.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase()
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer database.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("cannot open %s: %w", args[0], err)
			}
			defer f.Close()

			catalog := service.NewCatalogService(database)
			reader := csv.NewReader(f)
			reader.FieldsPerRecord = 6

			successCount := 0
			errorCount := 0
			line := 0
			for {
				record, err := reader.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("csv read failed: %w", err)
				}
				line++

				quantity, err := strconv.Atoi(strings.TrimSpace(record[2]))
				if err != nil {
					if line == 1 {
						continue // header row
					}
					fmt.Printf("line %d: invalid quantity %q, skipping\n", line, record[2])
					errorCount++
					continue
				}

				params := models.CreateBookParams{
					Title:     strings.TrimSpace(record[0]),
					Author:    strings.TrimSpace(record[1]),
					Quantity:  quantity,
					Publisher: strings.TrimSpace(record[3]),
					AgeRating: models.AgeRating(strings.TrimSpace(record[5])),
				}
				if subject := strings.TrimSpace(record[4]); subject != "" {
					params.Subject = &subject
				}

				book, err := catalog.AddBook(context.Background(), params)
				if err != nil {
					fmt.Printf("line %d: %v\n", line, err)
					errorCount++
					continue
				}
				fmt.Printf("Imported: %s by %s (ID: %d)\n", book.Title, book.Author, book.ID)
				successCount++
			}

			fmt.Printf("\nImport complete!\n")
			fmt.Printf("Successfully imported: %d books\n", successCount)
			fmt.Printf("Errors: %d\n", errorCount)
			return nil
		},
	}

	return cmd
}
