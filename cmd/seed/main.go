// Command seed loads a YAML fixture file into the database: companies,
// user accounts, products and their document requirements. Meant for local
// development and demo environments, not production.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"pharmaops/internal/catalog"
	"pharmaops/internal/platform/config"
	"pharmaops/internal/platform/logger"
	"pharmaops/internal/platform/postgres"
	"pharmaops/internal/user"
	"pharmaops/pkg/domain"
)

type fixture struct {
	Companies []struct {
		Name   string `yaml:"name"`
		Domain string `yaml:"domain"`
		Users  []struct {
			Email    string `yaml:"email"`
			Password string `yaml:"password"`
			Role     string `yaml:"role"`
		} `yaml:"users"`
		Products []struct {
			Name         string `yaml:"name"`
			SKU          string `yaml:"sku"`
			Requirements []struct {
				Name              string `yaml:"name"`
				Description       string `yaml:"description"`
				RequiredForExport bool   `yaml:"requiredForExport"`
				Country           string `yaml:"country"`
			} `yaml:"requirements"`
		} `yaml:"products"`
	} `yaml:"companies"`

	// Internal staff accounts without a company.
	Users []struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

func main() {
	path := flag.String("f", "seed.yaml", "fixture file")
	flag.Parse()

	log := logger.New(slog.LevelInfo)
	if err := run(context.Background(), *path, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, log *slog.Logger) error {
	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("PHARMAOPS_DATABASE_URL is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	companies := catalog.NewPostgresCompanyStore(db)
	products := catalog.NewPostgresProductStore(db)
	requirements := catalog.NewPostgresRequirementStore(db)
	users := user.NewPostgresStore(db)

	for _, u := range fx.Users {
		if err := seedUser(ctx, users, u.Email, u.Password, u.Role, nil); err != nil {
			return err
		}
		log.Info("seeded user", "email", u.Email, "role", u.Role)
	}

	for _, c := range fx.Companies {
		company := catalog.Company{ID: domain.NewCompanyID(), Name: c.Name, Domain: c.Domain}
		if existing, err := companies.FindByName(ctx, c.Name); err == nil {
			company = existing
		} else if err := companies.Save(ctx, company); err != nil {
			return fmt.Errorf("save company %q: %w", c.Name, err)
		}
		log.Info("seeded company", "name", c.Name, "id", company.ID)

		for _, u := range c.Users {
			if err := seedUser(ctx, users, u.Email, u.Password, u.Role, &company.ID); err != nil {
				return err
			}
			log.Info("seeded user", "email", u.Email, "role", u.Role, "company", c.Name)
		}

		for _, p := range c.Products {
			product := catalog.Product{
				ID:        domain.NewProductID(),
				Name:      p.Name,
				SKU:       p.SKU,
				CompanyID: company.ID,
			}
			if err := products.Save(ctx, product); err != nil {
				return fmt.Errorf("save product %q: %w", p.Name, err)
			}
			for _, r := range p.Requirements {
				req := catalog.Requirement{
					ID:                domain.NewRequirementID(),
					ProductID:         product.ID,
					Name:              r.Name,
					Description:       r.Description,
					RequiredForExport: r.RequiredForExport,
					Country:           r.Country,
				}
				if err := requirements.Save(ctx, req); err != nil {
					return fmt.Errorf("save requirement %q: %w", r.Name, err)
				}
			}
			log.Info("seeded product", "name", p.Name, "requirements", len(p.Requirements))
		}
	}
	return nil
}

func seedUser(ctx context.Context, store user.Store, email, password, role string, companyID *domain.CompanyID) error {
	r := domain.Role(role)
	if !r.Valid() {
		return fmt.Errorf("user %q: unknown role %q", email, role)
	}
	if _, err := store.FindByEmail(ctx, email); err == nil {
		return nil // already present, idempotent re-run
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password for %q: %w", email, err)
	}
	return store.Save(ctx, user.User{
		ID:           domain.NewUserID(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         r,
		CompanyID:    companyID,
	})
}
