package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/AkashSundaramoorthi/Haven/utils"
	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "haven.db"

// KV is the durable key-value contract the rest of the app depends on.
// Implementations must return ok=false (not an error) for missing keys.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

type KVEntry struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Key       string `gorm:"not null;unique"`
	Value     string
}

// SqliteKV is the production KV - an encrypted sqlite db with a single
// kv_entries table.
type SqliteKV struct {
	db *gorm.DB
}

func NewSqliteKV(passPhrase, rootDir string) (*SqliteKV, error) {
	dbDSNVal, err := dbDSN(passPhrase, rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err := gorm.Open(sqliteEncrypt.Open(dbDSNVal), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	if err = db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return &SqliteKV{db: db}, nil
}

func (s *SqliteKV) Get(key string) (string, bool, error) {
	entry := KVEntry{}

	err := s.db.Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return entry.Value, true, nil
}

func (s *SqliteKV) Set(key, value string) error {
	entry := KVEntry{}

	err := s.db.Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&KVEntry{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}

	return s.db.Model(&entry).Update("value", value).Error
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func dbDSN(passPhrase, rootDir string) (string, error) {
	dbDir, err := DbDirectory(rootDir)
	if err != nil {
		return "", err
	}

	dbFilePath := filepath.Join(dbDir, DB_NAME)
	dbName := fmt.Sprintf("file:%v", dbFilePath)

	return fmt.Sprintf(
		"%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbName,
		passPhrase,
	), nil
}

// DbDirectory retrieves(& creates if missing) the directory the
// sqlite db lives in. Also used by the backup job to locate the db file.
func DbDirectory(rootDir string) (string, error) {
	dbDir := filepath.Join(rootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}
