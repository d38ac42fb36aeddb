package services

import (
	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteService is the lightweight local/dev database backend. It hands out
// the same Store surface as PostgresService.
type SqliteService struct {
	context.DefaultService

	store    *Store
	database string
}

const SQLITE_SVC = "sqlite_svc"

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

func (ds *SqliteService) Store() *Store {
	return ds.store
}

// Db Access to raw SqliteService db
func (ds *SqliteService) Db() *gorm.DB {
	return ds.store.Db()
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.database = envOr("DB_DATABASE", "quizora.db")

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqliteService) Start() error {
	if databaseBackend() != SQLITE_SVC {
		return nil
	}

	db, err := gorm.Open(sqlite.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	ds.store = NewStore(db)

	if err = db.AutoMigrate(Models()...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqliteService) Shutdown() {
}
