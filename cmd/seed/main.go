// Package main provides a tool to seed the database with an admin account,
// the default product-type vocabulary, and optional sample catalog data.
//
// Usage:
//
//	DATA_PATH=~/archivist go run ./cmd/seed --email admin@example.com --password changeme-now
//	DATA_PATH=~/archivist go run ./cmd/seed --email admin@example.com --password changeme-now --fixtures
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/archivistapp/archivist-server/internal/auth"
	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
	"github.com/archivistapp/archivist-server/internal/ratelimit"
	"github.com/archivistapp/archivist-server/internal/service"
	"github.com/archivistapp/archivist-server/internal/store"
)

var (
	email    = flag.String("email", "", "Admin account email (required)")
	password = flag.String("password", "", "Admin account password (required)")
	name     = flag.String("name", "Administrator", "Admin display name")
	fixtures = flag.Bool("fixtures", false, "Create sample shelves and products for the admin")
)

var defaultTypes = []string{"VHS", "Vinyl", "CD", "Blu-ray", "DVD"}

func main() {
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/archivist")
	}

	dbPath := filepath.Join(dataPath, "db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	keyHex, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute, 720*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	limiter := ratelimit.New(1000, 1000)
	defer limiter.Stop()

	logger := slog.New(slog.DiscardHandler)
	authService := service.NewAuthService(s, tokens, limiter, logger)
	adminService := service.NewAdminService(s, logger)
	libraryService := service.NewLibraryService(s, logger)

	ctx := context.Background()

	userID := seedAdmin(ctx, s, authService)
	seedVocabulary(ctx, adminService)

	if *fixtures {
		seedFixtures(ctx, libraryService, userID)
	}

	fmt.Println("Done.")
}

func seedAdmin(ctx context.Context, s *store.Store, authService *service.AuthService) string {
	resp, err := authService.Signup(ctx, service.SignupRequest{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			log.Fatalf("An account with email %s already exists", *email)
		}
		log.Fatalf("Failed to create admin account: %v", err)
	}

	user, err := s.Users.Get(ctx, resp.User.ID)
	if err != nil {
		log.Fatalf("Failed to reload admin account: %v", err)
	}
	user.Status = domain.UserStatusAdmin
	user.UpdatedAt = time.Now().UTC()
	if err := s.Users.Update(ctx, user.ID, user); err != nil {
		log.Fatalf("Failed to promote admin account: %v", err)
	}

	fmt.Printf("Created admin account %s (%s)\n", *email, user.ID)
	return user.ID
}

func seedVocabulary(ctx context.Context, adminService *service.AdminService) {
	for _, typeName := range defaultTypes {
		if _, err := adminService.CreateProductType(ctx, service.CreateProductTypeRequest{Name: typeName}); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				fmt.Printf("  Type %s already exists, skipping\n", typeName)
				continue
			}
			log.Fatalf("Failed to create product type %s: %v", typeName, err)
		}
		fmt.Printf("  Created product type %s\n", typeName)
	}
}

func seedFixtures(ctx context.Context, libraryService *service.LibraryService, userID string) {
	sample := []struct {
		shelf    string
		products []service.CreateProductRequest
	}{
		{
			shelf: "Living Room",
			products: []service.CreateProductRequest{
				{Name: "Blade Runner", Type: "VHS", Year: 1982},
				{Name: "Kind of Blue", Type: "Vinyl", Year: 1959, Artist: "Miles Davis"},
			},
		},
		{
			shelf: "Studio Shelf",
			products: []service.CreateProductRequest{
				{Name: "In Rainbows", Type: "CD", Year: 2007, Artist: "Radiohead"},
				{Name: "The Matrix", Type: "Blu-ray", Year: 1999},
			},
		},
	}

	for _, fixture := range sample {
		shelf, err := libraryService.CreateShelf(ctx, userID, service.CreateShelfRequest{Name: fixture.shelf})
		if err != nil {
			log.Fatalf("Failed to create shelf %s: %v", fixture.shelf, err)
		}
		fmt.Printf("  Created shelf %s\n", shelf.Name)

		for _, product := range fixture.products {
			if _, err := libraryService.CreateProduct(ctx, userID, shelf.ID, product); err != nil {
				log.Fatalf("Failed to create product %s: %v", product.Name, err)
			}
			fmt.Printf("    Added %s (%s, %d)\n", product.Name, product.Type, product.Year)
		}
	}
}
