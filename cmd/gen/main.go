package main

import (
	"authcore/internal/infra/persistence/model"

	"gorm.io/gen"
)

// Generates typed query helpers for the persistence models.
func main() {
	models := []any{
		model.UserModel{},
		model.RefreshTokenModel{},
		model.PasswordResetModel{},
		model.EquipmentModel{},
		model.MealModel{},
	}

	g := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
		Mode:    gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	g.ApplyBasic(models...)

	g.Execute()
}
