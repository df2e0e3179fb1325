package repository

import (
	"github.com/ihsanfund/donations/internal/domain/donation"
	"github.com/ihsanfund/donations/internal/domain/donor"
	"github.com/ihsanfund/donations/internal/domain/project"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/postgres"
	postgresRepo "github.com/ihsanfund/donations/internal/repository/postgres"
)

func NewDonationRepository(db *postgres.DB, logger *logger.Logger) donation.Repository {
	return postgresRepo.NewDonationRepository(db, logger)
}

func NewProjectRepository(db *postgres.DB, logger *logger.Logger) project.Repository {
	return postgresRepo.NewProjectRepository(db, logger)
}

func NewDonorRepository(db *postgres.DB, logger *logger.Logger) donor.Repository {
	return postgresRepo.NewDonorRepository(db, logger)
}
