package database

import (
	"fmt"
	"os"
	"testing"

	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestInitDBMigratesOnlyWhenAsked_DBIntegration(t *testing.T) {
	if os.Getenv("EXAM_PORTAL_INTEGRATION") != "1" {
		t.Skip("set EXAM_PORTAL_INTEGRATION=1 to run integration tests")
	}

	host := os.Getenv("EXAM_PORTAL_TEST_DB_HOST")
	if host == "" {
		host = "localhost"
	}

	const scratchDB = "exam_portal_migrate_test"
	adminDSN := fmt.Sprintf("root:@tcp(%s:3306)/?charset=utf8mb4", host)
	admin, err := gorm.Open(mysql.Open(adminDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open admin connection: %v", err)
	}
	if err := admin.Exec("DROP DATABASE IF EXISTS " + scratchDB).Error; err != nil {
		t.Fatalf("drop scratch db: %v", err)
	}
	if err := admin.Exec("CREATE DATABASE " + scratchDB).Error; err != nil {
		t.Fatalf("create scratch db: %v", err)
	}
	defer admin.Exec("DROP DATABASE IF EXISTS " + scratchDB)

	cfg := &config.DatabaseConfig{
		Host:      host,
		Port:      3306,
		User:      "root",
		DBName:    scratchDB,
		Charset:   "utf8mb4",
		ParseTime: true,
	}

	db, err := InitDB(cfg, false)
	if err != nil {
		t.Fatalf("InitDB without migrate: %v", err)
	}
	if db.Migrator().HasTable(&model.TestSubmission{}) {
		t.Fatal("InitDB migrated the schema without being asked")
	}

	db, err = InitDB(cfg, true)
	if err != nil {
		t.Fatalf("InitDB with migrate: %v", err)
	}
	for _, m := range []interface{}{
		&model.Test{}, &model.Question{}, &model.Option{},
		&model.TestQuestion{}, &model.TestResult{}, &model.TestSubmission{},
	} {
		if !db.Migrator().HasTable(m) {
			t.Errorf("migration did not create table for %T", m)
		}
	}
}
