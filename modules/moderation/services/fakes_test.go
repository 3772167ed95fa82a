package services_test

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/modules/core/domain/entities/upload"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/location"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/servicelocation"
	"github.com/connectedplaces/directory/modules/directory/domain/entities/taxonomy"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
	"github.com/connectedplaces/directory/modules/moderation/infrastructure/persistence"
)

var errNotFound = errors.New("not found")

// The fakes below back service tests with plain maps; ordering-sensitive
// repositories also keep an insertion-order slice. The proposal fake mirrors
// the real repository's error contract: missing rows and guarded writes
// against already-actioned rows both surface ErrProposalNotFound.

type fakeProposalRepo struct {
	order []uuid.UUID
	byID  map[uuid.UUID]*proposal.Proposal
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{byID: map[uuid.UUID]*proposal.Proposal{}}
}

func (r *fakeProposalRepo) GetByID(_ context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, persistence.ErrProposalNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProposalRepo) PendingForTarget(_ context.Context, t proposal.TargetType, targetID uuid.UUID) ([]*proposal.Proposal, error) {
	var out []*proposal.Proposal
	for _, id := range r.order {
		p := r.byID[id]
		if p.TargetType == t && p.TargetID != nil && *p.TargetID == targetID && p.IsPending() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) List(_ context.Context, params *proposal.FindParams) ([]*proposal.Proposal, error) {
	var out []*proposal.Proposal
	for _, id := range r.order {
		p := r.byID[id]
		if params.TargetType != "" && p.TargetType != params.TargetType {
			continue
		}
		if params.TargetID != nil && (p.TargetID == nil || *p.TargetID != *params.TargetID) {
			continue
		}
		if params.Status != "" && p.Status() != params.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProposalRepo) Create(_ context.Context, p *proposal.Proposal) (*proposal.Proposal, error) {
	cp := *p
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	out := cp
	return &out, nil
}

func (r *fakeProposalRepo) pending(id uuid.UUID) (*proposal.Proposal, error) {
	p, ok := r.byID[id]
	if !ok || !p.IsPending() {
		return nil, persistence.ErrProposalNotFound
	}
	return p, nil
}

func (r *fakeProposalRepo) UpdatePayload(_ context.Context, id uuid.UUID, doc payload.Document) error {
	p, err := r.pending(id)
	if err != nil {
		return err
	}
	p.Payload = doc
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakeProposalRepo) MarkApproved(_ context.Context, id, actionedBy uuid.UUID, at time.Time) error {
	p, err := r.pending(id)
	if err != nil {
		return err
	}
	p.ActionedBy = &actionedBy
	p.ApprovedAt = &at
	return nil
}

func (r *fakeProposalRepo) MarkRejected(_ context.Context, id, actionedBy uuid.UUID, message string, at time.Time) error {
	p, err := r.pending(id)
	if err != nil {
		return err
	}
	p.ActionedBy = &actionedBy
	p.RejectionMessage = &message
	p.DeletedAt = &at
	return nil
}

func (r *fakeProposalRepo) Supersede(_ context.Context, id uuid.UUID, at time.Time) error {
	p, err := r.pending(id)
	if err != nil {
		return err
	}
	p.DeletedAt = &at
	return nil
}

type fakeOrganisationRepo struct {
	byID map[uuid.UUID]*organisation.Organisation
}

func newFakeOrganisationRepo() *fakeOrganisationRepo {
	return &fakeOrganisationRepo{byID: map[uuid.UUID]*organisation.Organisation{}}
}

func (r *fakeOrganisationRepo) GetByID(_ context.Context, id uuid.UUID) (*organisation.Organisation, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrganisationRepo) GetPaginated(_ context.Context, _ *organisation.FindParams) ([]*organisation.Organisation, error) {
	var out []*organisation.Organisation
	for _, o := range r.byID {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrganisationRepo) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	for _, o := range r.byID {
		if o.Slug == slug && o.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrganisationRepo) Create(_ context.Context, o *organisation.Organisation) (*organisation.Organisation, error) {
	cp := *o
	cp.ID = uuid.New()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeOrganisationRepo) Update(_ context.Context, o *organisation.Organisation) (*organisation.Organisation, error) {
	if _, ok := r.byID[o.ID]; !ok {
		return nil, errNotFound
	}
	cp := *o
	r.byID[o.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeOrganisationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeServiceRepo struct {
	byID map[uuid.UUID]*service.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{byID: map[uuid.UUID]*service.Service{}}
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*service.Service, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeServiceRepo) GetPaginated(_ context.Context, _ *service.FindParams) ([]*service.Service, error) {
	var out []*service.Service
	for _, s := range r.byID {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeServiceRepo) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	for _, s := range r.byID {
		if s.Slug == slug && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeServiceRepo) Create(_ context.Context, s *service.Service) (*service.Service, error) {
	cp := *s
	cp.ID = uuid.New()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeServiceRepo) Update(_ context.Context, s *service.Service) (*service.Service, error) {
	if _, ok := r.byID[s.ID]; !ok {
		return nil, errNotFound
	}
	cp := *s
	r.byID[s.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeLocationRepo struct {
	byID map[uuid.UUID]*location.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{byID: map[uuid.UUID]*location.Location{}}
}

func (r *fakeLocationRepo) GetByID(_ context.Context, id uuid.UUID) (*location.Location, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLocationRepo) GetPaginated(_ context.Context, _ *location.FindParams) ([]*location.Location, error) {
	var out []*location.Location
	for _, l := range r.byID {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLocationRepo) Create(_ context.Context, l *location.Location) (*location.Location, error) {
	cp := *l
	cp.ID = uuid.New()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeLocationRepo) Update(_ context.Context, l *location.Location) (*location.Location, error) {
	if _, ok := r.byID[l.ID]; !ok {
		return nil, errNotFound
	}
	cp := *l
	r.byID[l.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeServiceLocationRepo struct {
	byID map[uuid.UUID]*servicelocation.ServiceLocation
}

func newFakeServiceLocationRepo() *fakeServiceLocationRepo {
	return &fakeServiceLocationRepo{byID: map[uuid.UUID]*servicelocation.ServiceLocation{}}
}

func (r *fakeServiceLocationRepo) GetByID(_ context.Context, id uuid.UUID) (*servicelocation.ServiceLocation, error) {
	sl, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *sl
	return &cp, nil
}

func (r *fakeServiceLocationRepo) GetByServiceID(_ context.Context, serviceID uuid.UUID) ([]*servicelocation.ServiceLocation, error) {
	var out []*servicelocation.ServiceLocation
	for _, sl := range r.byID {
		if sl.ServiceID == serviceID {
			cp := *sl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeServiceLocationRepo) Create(_ context.Context, sl *servicelocation.ServiceLocation) (*servicelocation.ServiceLocation, error) {
	cp := *sl
	cp.ID = uuid.New()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeServiceLocationRepo) Update(_ context.Context, sl *servicelocation.ServiceLocation) (*servicelocation.ServiceLocation, error) {
	if _, ok := r.byID[sl.ID]; !ok {
		return nil, errNotFound
	}
	cp := *sl
	r.byID[sl.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeServiceLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeTaxonomyRepo struct {
	byID map[uuid.UUID]*taxonomy.Taxonomy
}

func newFakeTaxonomyRepo() *fakeTaxonomyRepo {
	return &fakeTaxonomyRepo{byID: map[uuid.UUID]*taxonomy.Taxonomy{}}
}

func (r *fakeTaxonomyRepo) GetByID(_ context.Context, id uuid.UUID) (*taxonomy.Taxonomy, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaxonomyRepo) GetByTree(_ context.Context, tree taxonomy.Tree) ([]*taxonomy.Taxonomy, error) {
	var out []*taxonomy.Taxonomy
	for _, t := range r.byID {
		if t.Tree == tree {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaxonomyRepo) SlugExists(_ context.Context, tree taxonomy.Tree, slug string, excludeID uuid.UUID) (bool, error) {
	for _, t := range r.byID {
		if t.Tree == tree && t.Slug == slug && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTaxonomyRepo) Create(_ context.Context, t *taxonomy.Taxonomy) (*taxonomy.Taxonomy, error) {
	cp := *t
	cp.ID = uuid.New()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeTaxonomyRepo) Update(_ context.Context, t *taxonomy.Taxonomy) (*taxonomy.Taxonomy, error) {
	if _, ok := r.byID[t.ID]; !ok {
		return nil, errNotFound
	}
	cp := *t
	r.byID[t.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeTaxonomyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*user.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) (*user.User, error) {
	cp := *u
	cp.ID = uuid.New()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) (*user.User, error) {
	if _, ok := r.byID[u.ID]; !ok {
		return nil, errNotFound
	}
	cp := *u
	r.byID[u.ID] = &cp
	out := cp
	return &out, nil
}

type fakeRoleRepo struct {
	byUser map[uuid.UUID][]user.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{byUser: map[uuid.UUID][]user.Role{}}
}

func (r *fakeRoleRepo) Assign(_ context.Context, userID uuid.UUID, role user.Role) error {
	r.byUser[userID] = append(r.byUser[userID], role)
	return nil
}

func (r *fakeRoleRepo) RevokeServiceRoles(_ context.Context, serviceID, organisationID uuid.UUID) error {
	for userID, roles := range r.byUser {
		var kept []user.Role
		for _, role := range roles {
			tied := role.ServiceID != nil && *role.ServiceID == serviceID &&
				role.OrganisationID != nil && *role.OrganisationID == organisationID
			if !tied {
				kept = append(kept, role)
			}
		}
		r.byUser[userID] = kept
	}
	return nil
}

func (r *fakeRoleRepo) OrganisationAdminIDs(_ context.Context, organisationID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for userID, roles := range r.byUser {
		for _, role := range roles {
			if role.Name == user.RoleOrganisationAdmin && role.OrganisationID != nil && *role.OrganisationID == organisationID {
				out = append(out, userID)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) RolesForUser(_ context.Context, userID uuid.UUID) ([]user.Role, error) {
	return append([]user.Role(nil), r.byUser[userID]...), nil
}

type fakeUploadRepo struct {
	byID map[uuid.UUID]*upload.Upload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{byID: map[uuid.UUID]*upload.Upload{}}
}

func (r *fakeUploadRepo) GetByID(_ context.Context, id uuid.UUID) (*upload.Upload, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUploadRepo) Create(_ context.Context, u *upload.Upload) (*upload.Upload, error) {
	cp := *u
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUploadRepo) MarkAssigned(_ context.Context, id uuid.UUID) error {
	u, ok := r.byID[id]
	if !ok {
		return errNotFound
	}
	if u.Status != upload.StatusPendingAssignment {
		return errors.New("not pending assignment")
	}
	u.Status = upload.StatusAssigned
	return nil
}
