package postgres

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres stores complaints in PostgreSQL through gorm
type Postgres struct {
	db        *gorm.DB
	complaint *complaintRepository
}

var _ interfaces.Repository = &Postgres{}

// New opens dsn and migrates the complaint schema
func New(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect postgres")
	}

	if err := db.WithContext(ctx).AutoMigrate(&complaintRow{}, &adherenceRow{}); err != nil {
		return nil, goerr.Wrap(err, "failed to migrate postgres schema")
	}

	return &Postgres{
		db:        db,
		complaint: newComplaintRepository(db),
	}, nil
}

func (p *Postgres) Complaint() interfaces.ComplaintRepository {
	return p.complaint
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get sql.DB")
	}
	return sqlDB.Close()
}
