package postgres

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ihsanfund/donations/internal/domain/donor"
	"github.com/ihsanfund/donations/internal/domain/project"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProjectRepositorySuite struct {
	repoSuite
	repo project.Repository
}

func TestProjectRepository(t *testing.T) {
	suite.Run(t, new(ProjectRepositorySuite))
}

func (s *ProjectRepositorySuite) SetupTest() {
	s.repoSuite.SetupTest()
	s.repo = NewProjectRepository(s.db, logger.NewNoopLogger())
}

func (s *ProjectRepositorySuite) TestGet() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
		WithArgs("proj_1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "is_donation_active", "current_amount", "donation_count", "created_at", "updated_at",
		}).AddRow("proj_1", "Water well", true, "1200.50", 14, s.now, s.now))

	p, err := s.repo.Get(s.ctx, "proj_1")
	s.Require().NoError(err)
	s.Equal("Water well", p.Title)
	s.True(p.IsDonationActive)
	s.True(decimal.RequireFromString("1200.5").Equal(p.CurrentAmount))
	s.Equal(14, p.DonationCount)
}

func (s *ProjectRepositorySuite) TestGetNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
		WithArgs("proj_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.repo.Get(s.ctx, "proj_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *ProjectRepositorySuite) TestIncrementDonationTotals() {
	s.mock.ExpectExec(regexp.QuoteMeta("current_amount = current_amount + $2")).
		WithArgs("proj_1", decimal.RequireFromString("25.50"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.IncrementDonationTotals(s.ctx, "proj_1", decimal.RequireFromString("25.50")))
}

func (s *ProjectRepositorySuite) TestIncrementMissingProject() {
	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE projects")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.IncrementDonationTotals(s.ctx, "proj_gone", decimal.NewFromInt(1))
	s.True(ierr.IsNotFound(err))
}

type DonorRepositorySuite struct {
	repoSuite
	repo donor.Repository
}

func TestDonorRepository(t *testing.T) {
	suite.Run(t, new(DonorRepositorySuite))
}

func (s *DonorRepositorySuite) SetupTest() {
	s.repoSuite.SetupTest()
	s.repo = NewDonorRepository(s.db, logger.NewNoopLogger())
}

func (s *DonorRepositorySuite) TestGet() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, created_at FROM donors WHERE id = $1")).
		WithArgs("donor_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}).
			AddRow("donor_1", "Amina", "amina@example.com", "+96550000000", s.now))

	d, err := s.repo.Get(s.ctx, "donor_1")
	s.Require().NoError(err)
	s.Equal("amina@example.com", d.Email)
}

func (s *DonorRepositorySuite) TestGetNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM donors")).
		WithArgs("donor_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.repo.Get(s.ctx, "donor_missing")
	s.True(ierr.IsNotFound(err))
}
