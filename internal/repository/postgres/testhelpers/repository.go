package testhelpers

import (
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewSupplyRowRepositoryForTest creates a supply row repository with test database and logger
func NewSupplyRowRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SupplyRowRepository {
	return postgres.NewSupplyRowRepository(NewDBForTest(db, logger))
}
