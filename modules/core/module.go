package core

import (
	"embed"

	"github.com/connectedplaces/directory/modules/core/infrastructure/persistence"
	"github.com/connectedplaces/directory/modules/core/services"
	"github.com/connectedplaces/directory/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewUserService(
			persistence.NewUserRepository(),
			persistence.NewRoleRepository(),
		),
		services.NewUploadService(persistence.NewUploadRepository()),
	)

	return nil
}

func (m *Module) Name() string {
	return "core"
}
