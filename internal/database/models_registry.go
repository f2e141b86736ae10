package database

import "packtrail/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Trip{},
		&models.Bag{},
		&models.Category{},
		&models.Item{},
		&models.Article{},
		&models.Changelog{},
		&models.BugReport{},
	}
}
