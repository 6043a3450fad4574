package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pharmaops/internal/audit"
	"pharmaops/internal/catalog"
	"pharmaops/internal/platform/metrics"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/sentinel"
	"pharmaops/pkg/platform/tx"
)

const defaultTokenTTL = 12 * time.Hour

// CompanySource verifies company references on vendor invites.
type CompanySource interface {
	Get(ctx context.Context, id domain.CompanyID) (catalog.Company, error)
}

// ProductSource verifies product references on vendor assignments.
type ProductSource interface {
	Get(ctx context.Context, id domain.ProductID) (catalog.Product, error)
}

// Service manages accounts: vendor onboarding, product assignments and
// credential checks.
type Service struct {
	users      Store
	companies  CompanySource
	products   ProductSource
	recorder   *audit.Recorder
	mailer     Mailer
	runner     tx.Runner
	logger     *slog.Logger
	metrics    *metrics.Metrics
	signingKey []byte
	tokenTTL   time.Duration
}

func NewService(
	users Store,
	companies CompanySource,
	products ProductSource,
	recorder *audit.Recorder,
	mailer Mailer,
	runner tx.Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
	signingKey string,
) *Service {
	return &Service{
		users:      users,
		companies:  companies,
		products:   products,
		recorder:   recorder,
		mailer:     mailer,
		runner:     runner,
		logger:     logger,
		metrics:    m,
		signingKey: []byte(signingKey),
		tokenTTL:   defaultTokenTTL,
	}
}

// InviteVendor creates a vendor account for a company and mails a temporary
// password. The mail is advisory: a delivery failure is logged, not returned.
// Admin only.
func (s *Service) InviteVendor(ctx context.Context, actor domain.Actor, email string, companyID domain.CompanyID) (Invitation, error) {
	if !actor.Is(domain.RoleAdmin) {
		return Invitation{}, dErrors.New(dErrors.CodeForbidden, "inviting vendors requires the admin role")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Invitation{}, dErrors.New(dErrors.CodeValidation, "a valid email address is required")
	}
	if _, err := s.companies.Get(ctx, companyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Invitation{}, dErrors.Newf(dErrors.CodeNotFound, "company %s not found", companyID)
		}
		return Invitation{}, dErrors.Wrap(err, dErrors.CodeInternal, "load company")
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return Invitation{}, dErrors.Newf(dErrors.CodeConflict, "an account already exists for %s", email)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Invitation{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up account")
	}

	tempPassword := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return Invitation{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	u := User{
		ID:           domain.NewUserID(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleVendor,
		CompanyID:    &companyID,
	}

	err = s.runner.RunInTx(ctx, u.ID.String(), func(ctx context.Context) error {
		if err := s.users.Save(ctx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save user")
		}
		return s.recorder.Record(ctx, &actor.ID, audit.ActionVendorInvited, map[string]any{
			"userId":    u.ID.String(),
			"email":     email,
			"companyId": companyID.String(),
		})
	})
	if err != nil {
		return Invitation{}, err
	}

	if err := s.mailer.SendVendorInvite(email, tempPassword); err != nil {
		s.logger.Warn("vendor invite mail failed", "email", email, "error", err)
	}

	return Invitation{User: u, TempPassword: tempPassword}, nil
}

// AssignProduct links a vendor to a product they may ship for. Admin only.
func (s *Service) AssignProduct(ctx context.Context, actor domain.Actor, vendorID domain.UserID, productID domain.ProductID) error {
	if !actor.Is(domain.RoleAdmin) {
		return dErrors.New(dErrors.CodeForbidden, "assigning vendors requires the admin role")
	}

	vendor, err := s.users.Get(ctx, vendorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "user %s not found", vendorID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load user")
	}
	if vendor.Role != domain.RoleVendor {
		return dErrors.Newf(dErrors.CodeValidation, "user %s is not a vendor", vendorID)
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "product %s not found", productID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load product")
	}

	return s.runner.RunInTx(ctx, vendorID.String(), func(ctx context.Context) error {
		if err := s.users.AssignProduct(ctx, vendorID, productID); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Newf(dErrors.CodeConflict, "vendor %s is already assigned to product %s", vendorID, productID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "assign product")
		}
		return s.recorder.Record(ctx, &actor.ID, audit.ActionVendorAssigned, map[string]any{
			"vendorId":  vendorID.String(),
			"productId": productID.String(),
		})
	})
}

// Login checks credentials and issues a signed bearer token. Failures are
// deliberately indistinguishable between unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "look up account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID.String(),
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	if u.CompanyID != nil {
		claims["companyId"] = u.CompanyID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return token, nil
}

// Get loads a single user.
func (s *Service) Get(ctx context.Context, id domain.UserID) (User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.Newf(dErrors.CodeNotFound, "user %s not found", id)
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "load user")
	}
	return u, nil
}

// AssignedProducts returns the products a vendor may ship for.
func (s *Service) AssignedProducts(ctx context.Context, vendorID domain.UserID) ([]domain.ProductID, error) {
	return s.users.ListAssignedProducts(ctx, vendorID)
}
