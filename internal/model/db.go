package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&GroupYear{}, &LearningUnitYear{}, &LearningClassYear{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Element{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&GroupElementYear{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Prerequisite{}, &PrerequisiteItem{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&AuthorizedRelationship{}); err != nil {
		return err
	}

	return nil
}
