package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/servicelocation"
	"github.com/connectedplaces/directory/modules/directory/domain/entities/taxonomy"
	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
)

// DirectoryService is the read side of the directory: listings, detail pages
// and resolved opening times.
type DirectoryService struct {
	organisations    organisation.Repository
	services         service.Repository
	serviceLocations servicelocation.Repository
	taxonomies       taxonomy.Repository
	calendar         openinghours.Calendar
}

func NewDirectoryService(
	organisations organisation.Repository,
	services service.Repository,
	serviceLocations servicelocation.Repository,
	taxonomies taxonomy.Repository,
	calendar openinghours.Calendar,
) *DirectoryService {
	return &DirectoryService{
		organisations:    organisations,
		services:         services,
		serviceLocations: serviceLocations,
		taxonomies:       taxonomies,
		calendar:         calendar,
	}
}

func (s *DirectoryService) GetOrganisation(ctx context.Context, id uuid.UUID) (*organisation.Organisation, error) {
	return s.organisations.GetByID(ctx, id)
}

func (s *DirectoryService) ListOrganisations(ctx context.Context, params *organisation.FindParams) ([]*organisation.Organisation, error) {
	return s.organisations.GetPaginated(ctx, params)
}

func (s *DirectoryService) GetService(ctx context.Context, id uuid.UUID) (*service.Service, error) {
	return s.services.GetByID(ctx, id)
}

func (s *DirectoryService) ListServices(ctx context.Context, params *service.FindParams) ([]*service.Service, error) {
	return s.services.GetPaginated(ctx, params)
}

func (s *DirectoryService) Taxonomy(ctx context.Context, tree taxonomy.Tree) ([]*taxonomy.Taxonomy, error) {
	return s.taxonomies.GetByTree(ctx, tree)
}

// OpeningTimes is a service location's schedule resolved against the clock.
type OpeningTimes struct {
	ServiceLocationID uuid.UUID                `json:"service_location_id"`
	IsOpenNow         bool                     `json:"is_open_now"`
	NextOccurrence    *openinghours.Occurrence `json:"next_occurrence,omitempty"`
}

// OpeningTimesFor resolves whether each of the service's locations is open
// right now and when it next opens.
func (s *DirectoryService) OpeningTimesFor(ctx context.Context, serviceID uuid.UUID, now time.Time) ([]OpeningTimes, error) {
	sls, err := s.serviceLocations.GetByServiceID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	out := make([]OpeningTimes, 0, len(sls))
	for _, sl := range sls {
		entry := OpeningTimes{
			ServiceLocationID: sl.ID,
			IsOpenNow:         sl.IsOpenNow(s.calendar, now),
		}
		if occ, ok := sl.NextOccurrence(s.calendar, now); ok {
			entry.NextOccurrence = &occ
		}
		out = append(out, entry)
	}
	return out, nil
}
