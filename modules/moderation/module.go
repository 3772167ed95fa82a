package moderation

import (
	"embed"

	corepersistence "github.com/connectedplaces/directory/modules/core/infrastructure/persistence"
	dirpersistence "github.com/connectedplaces/directory/modules/directory/infrastructure/persistence"
	"github.com/connectedplaces/directory/modules/moderation/infrastructure/persistence"
	"github.com/connectedplaces/directory/modules/moderation/presentation/controllers"
	"github.com/connectedplaces/directory/modules/moderation/services"
	"github.com/connectedplaces/directory/modules/moderation/services/appliers"
	"github.com/connectedplaces/directory/pkg/application"
)

//go:embed infrastructure/persistence/schema/moderation-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	roles := corepersistence.NewRoleRepository()
	servicesRepo := dirpersistence.NewServiceRepository()
	serviceLocations := dirpersistence.NewServiceLocationRepository()

	registry := appliers.NewRegistry(appliers.Deps{
		Organisations:    dirpersistence.NewOrganisationRepository(),
		Services:         servicesRepo,
		Locations:        dirpersistence.NewLocationRepository(),
		ServiceLocations: serviceLocations,
		Taxonomies:       dirpersistence.NewTaxonomyRepository(),
		Users:            corepersistence.NewUserRepository(),
		Roles:            roles,
		Uploads:          corepersistence.NewUploadRepository(),
	})

	app.RegisterServices(
		services.NewModerationService(
			persistence.NewProposalRepository(),
			registry,
			services.NewRolePermissionChecker(roles, servicesRepo, serviceLocations),
			app.EventPublisher(),
			services.PgAtomic(),
		),
	)

	app.RegisterControllers(
		controllers.NewModerationAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "moderation"
}
