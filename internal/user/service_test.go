package user

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"pharmaops/internal/audit"
	"pharmaops/internal/catalog"
	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
	"pharmaops/pkg/platform/tx"
)

const testSigningKey = "unit-test-signing-key"

// captureMailer records invites; Fail simulates an SMTP outage.
type captureMailer struct {
	sent []string
	Fail bool
}

func (m *captureMailer) SendVendorInvite(to, _ string) error {
	if m.Fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, to)
	return nil
}

type UserServiceSuite struct {
	suite.Suite
	users     *InMemoryStore
	companies *catalog.InMemoryCompanyStore
	products  *catalog.InMemoryProductStore
	mailer    *captureMailer
	service   *Service

	admin   domain.Actor
	company catalog.Company
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.users = NewInMemoryStore()
	s.companies = catalog.NewInMemoryCompanyStore()
	s.products = catalog.NewInMemoryProductStore()
	s.mailer = &captureMailer{}

	s.admin = domain.Actor{ID: domain.NewUserID(), Role: domain.RoleAdmin}
	s.company = catalog.Company{ID: domain.NewCompanyID(), Name: "Acme Pharma"}
	s.Require().NoError(s.companies.Save(context.Background(), s.company))

	logger := slog.New(slog.DiscardHandler)
	recorder := audit.NewRecorder(audit.NewInMemoryStore(), logger, nil)
	s.service = NewService(s.users, s.companies, s.products, recorder,
		s.mailer, tx.NewMutexRunner(), logger, nil, testSigningKey)
}

func (s *UserServiceSuite) TestInviteVendor() {
	ctx := context.Background()

	s.Run("creates the account and mails the temp password", func() {
		inv, err := s.service.InviteVendor(ctx, s.admin, "Vendor@Acme.example ", s.company.ID)
		s.Require().NoError(err)

		s.Equal("vendor@acme.example", inv.User.Email, "email is normalized")
		s.Equal(domain.RoleVendor, inv.User.Role)
		s.Require().NotNil(inv.User.CompanyID)
		s.Equal(s.company.ID, *inv.User.CompanyID)
		s.NotEmpty(inv.TempPassword)
		s.NotEqual(inv.TempPassword, inv.User.PasswordHash)

		s.Contains(s.mailer.sent, "vendor@acme.example")
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.InviteVendor(ctx, s.admin, "dup@acme.example", s.company.ID)
		s.Require().NoError(err)
		_, err = s.service.InviteVendor(ctx, s.admin, "dup@acme.example", s.company.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("mail failure does not fail the invite", func() {
		s.mailer.Fail = true
		defer func() { s.mailer.Fail = false }()

		inv, err := s.service.InviteVendor(ctx, s.admin, "unlucky@acme.example", s.company.ID)
		s.Require().NoError(err)

		_, err = s.users.FindByEmail(ctx, inv.User.Email)
		s.NoError(err, "account exists despite the mail failure")
	})

	s.Run("unknown company", func() {
		_, err := s.service.InviteVendor(ctx, s.admin, "v@acme.example", domain.NewCompanyID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid email", func() {
		_, err := s.service.InviteVendor(ctx, s.admin, "not-an-email", s.company.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("non-admin is forbidden", func() {
		vendor := domain.Actor{ID: domain.NewUserID(), Role: domain.RoleVendor}
		_, err := s.service.InviteVendor(ctx, vendor, "v@acme.example", s.company.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *UserServiceSuite) TestAssignProduct() {
	ctx := context.Background()

	product := catalog.Product{ID: domain.NewProductID(), Name: "Amoxicillin", CompanyID: s.company.ID}
	s.Require().NoError(s.products.Save(ctx, product))

	inv, err := s.service.InviteVendor(ctx, s.admin, "v@acme.example", s.company.ID)
	s.Require().NoError(err)
	vendorID := inv.User.ID

	s.Run("links vendor to product", func() {
		s.Require().NoError(s.service.AssignProduct(ctx, s.admin, vendorID, product.ID))

		assigned, err := s.service.AssignedProducts(ctx, vendorID)
		s.Require().NoError(err)
		s.Equal([]domain.ProductID{product.ID}, assigned)
	})

	s.Run("double assignment conflicts", func() {
		err := s.service.AssignProduct(ctx, s.admin, vendorID, product.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("non-vendor target is rejected", func() {
		staff := User{ID: domain.NewUserID(), Email: "qa@pharmaops.example", Role: domain.RoleQAReviewer}
		s.Require().NoError(s.users.Save(ctx, staff))

		err := s.service.AssignProduct(ctx, s.admin, staff.ID, product.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown product", func() {
		err := s.service.AssignProduct(ctx, s.admin, vendorID, domain.NewProductID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UserServiceSuite) TestLogin() {
	ctx := context.Background()

	inv, err := s.service.InviteVendor(ctx, s.admin, "login@acme.example", s.company.ID)
	s.Require().NoError(err)

	s.Run("valid credentials yield a signed token with claims", func() {
		token, err := s.service.Login(ctx, "login@acme.example", inv.TempPassword)
		s.Require().NoError(err)

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			return []byte(testSigningKey), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		s.Require().NoError(err)

		claims, ok := parsed.Claims.(jwt.MapClaims)
		s.Require().True(ok)
		s.Equal(inv.User.ID.String(), claims["sub"])
		s.Equal(string(domain.RoleVendor), claims["role"])
		s.Equal(s.company.ID.String(), claims["companyId"])
	})

	s.Run("email lookup is case-insensitive", func() {
		_, err := s.service.Login(ctx, "LOGIN@acme.example", inv.TempPassword)
		s.NoError(err)
	})

	s.Run("wrong password and unknown email are indistinguishable", func() {
		_, errWrongPass := s.service.Login(ctx, "login@acme.example", "wrong")
		_, errNoUser := s.service.Login(ctx, "ghost@acme.example", "wrong")

		s.True(dErrors.HasCode(errWrongPass, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(errNoUser, dErrors.CodeUnauthorized))
		s.Equal(errWrongPass.Error(), errNoUser.Error())
	})
}
