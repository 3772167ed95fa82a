package directory

import (
	"embed"

	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
	"github.com/connectedplaces/directory/modules/directory/infrastructure/persistence"
	"github.com/connectedplaces/directory/modules/directory/presentation/controllers"
	"github.com/connectedplaces/directory/modules/directory/services"
	"github.com/connectedplaces/directory/pkg/application"
	"github.com/connectedplaces/directory/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/directory-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	calendar := openinghours.NewCalendar(configuration.Use().Location())
	app.RegisterServices(
		services.NewDirectoryService(
			persistence.NewOrganisationRepository(),
			persistence.NewServiceRepository(),
			persistence.NewServiceLocationRepository(),
			persistence.NewTaxonomyRepository(),
			calendar,
		),
	)

	app.RegisterControllers(
		controllers.NewDirectoryAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "directory"
}
