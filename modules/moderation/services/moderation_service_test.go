package services_test

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
	"github.com/connectedplaces/directory/modules/core/domain/entities/upload"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/servicelocation"
	"github.com/connectedplaces/directory/modules/directory/domain/openinghours"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
	"github.com/connectedplaces/directory/modules/moderation/services"
	"github.com/connectedplaces/directory/modules/moderation/services/appliers"
	"github.com/connectedplaces/directory/pkg/eventbus"
)

type fixture struct {
	proposals        *fakeProposalRepo
	organisations    *fakeOrganisationRepo
	servicesRepo     *fakeServiceRepo
	locations        *fakeLocationRepo
	serviceLocations *fakeServiceLocationRepo
	taxonomies       *fakeTaxonomyRepo
	users            *fakeUserRepo
	roles            *fakeRoleRepo
	uploads          *fakeUploadRepo

	registry appliers.Registry
	svc      *services.ModerationService
}

func passthroughTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func quietBus() eventbus.EventBus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(log)
}

func newFixture() *fixture {
	f := &fixture{
		proposals:        newFakeProposalRepo(),
		organisations:    newFakeOrganisationRepo(),
		servicesRepo:     newFakeServiceRepo(),
		locations:        newFakeLocationRepo(),
		serviceLocations: newFakeServiceLocationRepo(),
		taxonomies:       newFakeTaxonomyRepo(),
		users:            newFakeUserRepo(),
		roles:            newFakeRoleRepo(),
		uploads:          newFakeUploadRepo(),
	}
	registry := appliers.NewRegistry(appliers.Deps{
		Organisations:    f.organisations,
		Services:         f.servicesRepo,
		Locations:        f.locations,
		ServiceLocations: f.serviceLocations,
		Taxonomies:       f.taxonomies,
		Users:            f.users,
		Roles:            f.roles,
		Uploads:          f.uploads,
	})
	f.registry = registry
	f.svc = services.NewModerationService(f.proposals, registry, nil, quietBus(), passthroughTx)
	return f
}

func (f *fixture) seedOrganisation(name, slug string) *organisation.Organisation {
	org, _ := f.organisations.Create(context.Background(), &organisation.Organisation{
		Name: name,
		Slug: slug,
	})
	return org
}

func (f *fixture) seedService(orgID uuid.UUID, name, slug string) *service.Service {
	svc, _ := f.servicesRepo.Create(context.Background(), &service.Service{
		OrganisationID: orgID,
		Name:           name,
		Slug:           slug,
		Status:         service.StatusActive,
	})
	return svc
}

func (f *fixture) submit(t *testing.T, targetType proposal.TargetType, targetID *uuid.UUID, body string) *proposal.Proposal {
	t.Helper()
	p, err := f.svc.Submit(context.Background(), services.SubmitCommand{
		TargetType: targetType,
		TargetID:   targetID,
		Payload:    payload.MustFromJSON([]byte(body)),
	})
	require.NoError(t, err)
	return p
}

func TestSubmit_ValidatesTarget(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, services.SubmitCommand{TargetType: "existing:widget"})
	assert.ErrorIs(t, err, services.ErrUnknownTargetType)

	_, err = f.svc.Submit(ctx, services.SubmitCommand{TargetType: proposal.TargetOrganisation})
	assert.ErrorIs(t, err, services.ErrTargetIDRequired)
}

func TestSubmit_ReconcilesOlderPendingFields(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Shelter North", "shelter-north")

	first := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"name":"Shelter NE","description":"old text"}`)
	second := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"name":"Shelter North East"}`)

	got, err := f.proposals.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
	assert.False(t, got.Payload.Has("name"), "re-edited field must leave the older proposal")
	assert.True(t, got.Payload.Has("description"))

	// A third submission covering the survivor supersedes the first entirely.
	f.submit(t, proposal.TargetOrganisation, &org.ID, `{"description":"new text"}`)
	got, err = f.proposals.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusRejected, got.Status())

	gotSecond, err := f.proposals.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.True(t, gotSecond.IsPending())
}

func TestSubmit_EmptyPayloadIsLegal(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Org", "org")

	older := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"name":"Renamed"}`)
	empty := f.submit(t, proposal.TargetOrganisation, &org.ID, `{}`)

	assert.True(t, empty.Payload.IsEmpty())
	got, err := f.proposals.GetByID(context.Background(), older.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending(), "an empty submission must not disturb older proposals")
}

func TestApprove_OrganisationEdit(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Shelter North", "shelter-north")
	phone := "0191 000 0000"
	stored, _ := f.organisations.GetByID(context.Background(), org.ID)
	stored.Phone = &phone
	_, err := f.organisations.Update(context.Background(), stored)
	require.NoError(t, err)

	p := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"name":"Shelter North East","phone":null}`)

	moderator := uuid.New()
	approved, result, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: moderator})
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusApproved, approved.Status())
	require.NotNil(t, result.UpdatedID)

	got, err := f.organisations.GetByID(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shelter North East", got.Name)
	assert.Equal(t, "shelter-north-east", got.Slug)
	assert.Nil(t, got.Phone, "explicit null clears the field")
}

func TestApprove_Twice(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Org", "org")
	p := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"description":"updated"}`)

	moderator := uuid.New()
	_, _, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: moderator})
	require.NoError(t, err)

	_, _, err = f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: moderator})
	assert.ErrorIs(t, err, services.ErrAlreadyActioned)
}

func TestReject(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Org", "org")
	p := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"description":"updated"}`)
	moderator := uuid.New()

	_, err := f.svc.Reject(context.Background(), p.ID, services.ActionCommand{ActionedBy: moderator})
	assert.ErrorIs(t, err, services.ErrMessageRequired)

	rejected, err := f.svc.Reject(context.Background(), p.ID, services.ActionCommand{
		ActionedBy: moderator,
		Message:    "needs a clearer description",
	})
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusRejected, rejected.Status())

	// Nothing was applied.
	got, err := f.organisations.GetByID(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Description)

	_, _, err = f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: moderator})
	assert.ErrorIs(t, err, services.ErrAlreadyActioned)
}

func TestApprove_ApplierFailureLeavesProposalPending(t *testing.T) {
	f := newFixture()
	missing := uuid.New()
	p := f.submit(t, proposal.TargetService, &missing, `{"name":"Ghost"}`)

	_, _, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.Error(t, err)

	got, err := f.proposals.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
}

func TestApprove_ServiceLocationHoursReplaceWholesale(t *testing.T) {
	f := newFixture()
	sl, _ := f.serviceLocations.Create(context.Background(), &servicelocation.ServiceLocation{
		ServiceID:  uuid.New(),
		LocationID: uuid.New(),
		RegularOpeningHours: []openinghours.RegularOpeningHour{
			{Frequency: openinghours.FrequencyWeekly, Weekday: 1, OpensAt: 9 * 60, ClosesAt: 17 * 60},
			{Frequency: openinghours.FrequencyWeekly, Weekday: 2, OpensAt: 9 * 60, ClosesAt: 17 * 60},
		},
	})

	p := f.submit(t, proposal.TargetServiceLocation, &sl.ID,
		`{"regular_opening_hours":[{"frequency":"weekly","weekday":3,"opens_at":"10:00","closes_at":"16:00"}]}`)
	_, _, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)

	got, err := f.serviceLocations.GetByID(context.Background(), sl.ID)
	require.NoError(t, err)
	require.Len(t, got.RegularOpeningHours, 1, "the new set replaces, never merges")
	assert.Equal(t, 3, got.RegularOpeningHours[0].Weekday)
	assert.Equal(t, openinghours.NewTimeOfDay(10, 0), got.RegularOpeningHours[0].OpensAt)
}

func TestApprove_NewServiceSlugCollision(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Org", "org")
	f.seedService(org.ID, "Food Bank", "food-bank")

	p := f.submit(t, proposal.TargetNewServiceByOrgAdmin, nil,
		`{"organisation_id":"`+org.ID.String()+`","name":"Food Bank","status":"active"}`)
	_, result, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)
	require.NotNil(t, result.CreatedServiceID)

	created, err := f.servicesRepo.GetByID(context.Background(), *result.CreatedServiceID)
	require.NoError(t, err)
	assert.Equal(t, "food-bank-1", created.Slug)
	assert.Equal(t, service.StatusActive, created.Status)
}

func TestApprove_NewServiceEditFlagForcesInactive(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Org", "org")

	p := f.submit(t, proposal.TargetNewServiceByGlobalAdmin, nil,
		`{"organisation_id":"`+org.ID.String()+`","name":"Advice Line","status":"active"}`)
	_, result, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New(), Edit: true})
	require.NoError(t, err)

	created, err := f.servicesRepo.GetByID(context.Background(), *result.CreatedServiceID)
	require.NoError(t, err)
	assert.Equal(t, service.StatusInactive, created.Status)
}

func TestApprove_OrganisationSignupCreatesEverything(t *testing.T) {
	f := newFixture()
	body := `{
		"user":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.org"},
		"organisation":{"name":"Number Crunchers","description":"maths help"},
		"service":{"name":"Drop-in Tutoring","is_free":true}
	}`
	p := f.submit(t, proposal.TargetNewOrganisationSignup, nil, body)

	_, result, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)
	require.NotNil(t, result.CreatedUserID)
	require.NotNil(t, result.CreatedOrganisationID)
	require.NotNil(t, result.CreatedServiceID)

	org, err := f.organisations.GetByID(context.Background(), *result.CreatedOrganisationID)
	require.NoError(t, err)
	assert.Equal(t, "number-crunchers", org.Slug)

	created, err := f.servicesRepo.GetByID(context.Background(), *result.CreatedServiceID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, created.OrganisationID)
	assert.Equal(t, service.StatusInactive, created.Status, "sign-up services start unpublished")

	roles, err := f.roles.RolesForUser(context.Background(), *result.CreatedUserID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, user.RoleOrganisationAdmin, roles[0].Name)
}

func TestApprove_OrganisationSignupJoinsExistingOrg(t *testing.T) {
	f := newFixture()
	org := f.seedOrganisation("Existing Org", "existing-org")

	body := `{
		"user":{"first_name":"Joan","last_name":"Clarke","email":"joan@example.org"},
		"organisation":{"id":"` + org.ID.String() + `"}
	}`
	p := f.submit(t, proposal.TargetNewOrganisationSignup, nil, body)

	_, result, err := f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, org.ID, *result.CreatedOrganisationID)
	assert.Nil(t, result.CreatedServiceID)

	orgs, err := f.organisations.GetPaginated(context.Background(), &organisation.FindParams{})
	require.NoError(t, err)
	assert.Len(t, orgs, 1, "joining must not create a duplicate organisation")

	roles, err := f.roles.RolesForUser(context.Background(), *result.CreatedUserID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, org.ID, *roles[0].OrganisationID)
}

func TestApprove_OrganisationSignupDuplicateEmail(t *testing.T) {
	f := newFixture()
	_, err := f.users.Create(context.Background(), user.New("Ada", "Lovelace", "ada@example.org"))
	require.NoError(t, err)

	body := `{
		"user":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.org"},
		"organisation":{"name":"Second Org"}
	}`
	p := f.submit(t, proposal.TargetNewOrganisationSignup, nil, body)

	_, _, err = f.svc.Approve(context.Background(), p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.Error(t, err)

	got, err := f.proposals.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
}

func TestApprove_ServiceReassignmentMigratesRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	oldOrg := f.seedOrganisation("Old Org", "old-org")
	newOrg := f.seedOrganisation("New Org", "new-org")
	svc := f.seedService(oldOrg.ID, "Helpline", "helpline")

	worker, _ := f.users.Create(ctx, user.New("W", "Orker", "worker@example.org"))
	require.NoError(t, f.roles.Assign(ctx, worker.ID, user.ServiceWorkerRole(oldOrg.ID, svc.ID)))
	admin, _ := f.users.Create(ctx, user.New("A", "Dmin", "admin@example.org"))
	require.NoError(t, f.roles.Assign(ctx, admin.ID, user.OrganisationAdminRole(newOrg.ID)))

	p := f.submit(t, proposal.TargetService, &svc.ID, `{"organisation_id":"`+newOrg.ID.String()+`"}`)
	_, _, err := f.svc.Approve(ctx, p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)

	moved, err := f.servicesRepo.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, newOrg.ID, moved.OrganisationID)

	workerRoles, _ := f.roles.RolesForUser(ctx, worker.ID)
	assert.Empty(t, workerRoles, "roles tied to the old organisation are revoked")

	adminRoles, _ := f.roles.RolesForUser(ctx, admin.ID)
	require.Len(t, adminRoles, 2)
	assert.Equal(t, user.RoleServiceAdmin, adminRoles[1].Name)
	assert.Equal(t, svc.ID, *adminRoles[1].ServiceID)
}

func TestApprove_FileAssignment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	org := f.seedOrganisation("Org", "org")
	file, _ := f.uploads.Create(ctx, &upload.Upload{
		Filename: "logo.png",
		MimeType: "image/png",
		Status:   upload.StatusPendingAssignment,
	})

	p := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"logo_file_id":"`+file.ID.String()+`"}`)
	_, _, err := f.svc.Approve(ctx, p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)

	got, _ := f.organisations.GetByID(ctx, org.ID)
	require.NotNil(t, got.LogoFileID)
	assert.Equal(t, file.ID, *got.LogoFileID)

	stored, _ := f.uploads.GetByID(ctx, file.ID)
	assert.Equal(t, upload.StatusAssigned, stored.Status)

	// A second proposal cannot claim the same file again.
	p2 := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"logo_file_id":"`+file.ID.String()+`"}`)
	_, _, err = f.svc.Approve(ctx, p2.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.Error(t, err)
}

// staleProposalRepo serves reads from a snapshot taken before a concurrent
// moderator settled the proposal; writes go to the live store.
type staleProposalRepo struct {
	*fakeProposalRepo
	snapshot *proposal.Proposal
}

func (r *staleProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	if r.snapshot != nil && r.snapshot.ID == id {
		cp := *r.snapshot
		return &cp, nil
	}
	return r.fakeProposalRepo.GetByID(ctx, id)
}

func TestApprove_ConcurrentLoserGetsAlreadyActioned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	org := f.seedOrganisation("Shelter", "shelter")
	p := f.submit(t, proposal.TargetOrganisation, &org.ID, `{"name":"Shelter NE"}`)

	snapshot, err := f.proposals.GetByID(ctx, p.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Approve(ctx, p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	require.NoError(t, err)

	// The loser read the proposal while it was still pending, so its guarded
	// write finds no row to update.
	stale := services.NewModerationService(
		&staleProposalRepo{fakeProposalRepo: f.proposals, snapshot: snapshot},
		f.registry, nil, quietBus(), passthroughTx,
	)
	_, _, err = stale.Approve(ctx, p.ID, services.ActionCommand{ActionedBy: uuid.New()})
	assert.ErrorIs(t, err, services.ErrAlreadyActioned)

	_, err = stale.Reject(ctx, p.ID, services.ActionCommand{ActionedBy: uuid.New(), Message: "no longer needed"})
	assert.ErrorIs(t, err, services.ErrAlreadyActioned)
}

type failingProposalRepo struct {
	*fakeProposalRepo
	err error
}

func (r *failingProposalRepo) GetByID(context.Context, uuid.UUID) (*proposal.Proposal, error) {
	return nil, r.err
}

func TestGetByID_InfrastructureFailureIsNotNotFound(t *testing.T) {
	f := newFixture()

	broken := services.NewModerationService(
		&failingProposalRepo{fakeProposalRepo: f.proposals, err: errors.New("connection reset")},
		f.registry, nil, quietBus(), passthroughTx,
	)
	_, err := broken.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrProposalNotFound)

	_, err = f.svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrProposalNotFound)
}
