package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

type fakeStaffRepo struct {
	accounts map[uuid.UUID]*models.StaffAccount
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{accounts: make(map[uuid.UUID]*models.StaffAccount)}
}

func (f *fakeStaffRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeStaffRepo) Create(_ context.Context, account *models.StaffAccount) error {
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeStaffRepo) FindByID(_ context.Context, id uuid.UUID) (*models.StaffAccount, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeStaffRepo) ListByVenue(_ context.Context, venueID uuid.UUID) ([]models.StaffAccount, error) {
	var out []models.StaffAccount
	for _, account := range f.accounts {
		if account.VenueID == venueID {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (f *fakeStaffRepo) Update(_ context.Context, account *models.StaffAccount) error {
	stored, ok := f.accounts[account.ID]
	if !ok {
		return nil
	}
	stored.Name = account.Name
	stored.Role = account.Role
	stored.PINHash = account.PINHash
	return nil
}

func (f *fakeStaffRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.accounts, id)
	return nil
}

func (f *fakeStaffRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if account, ok := f.accounts[id]; ok {
		account.IsActive = active
	}
	return nil
}

func (f *fakeStaffRepo) TouchLastLogin(_ context.Context, id uuid.UUID, now time.Time) error {
	if account, ok := f.accounts[id]; ok {
		account.LastLoginAt = &now
	}
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newStaffTestService(t *testing.T) (Service, *fakeStaffRepo) {
	t.Helper()
	repo := newFakeStaffRepo()
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func mamaActor(venueID uuid.UUID) Actor {
	return Actor{StaffID: uuid.New(), VenueID: venueID, Role: enums.StaffRoleMama}
}

func assertStaffCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr, ok := err.(*pkgerrors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreateStaffHashesPIN(t *testing.T) {
	svc, repo := newStaffTestService(t)
	venueID := uuid.New()

	account, err := svc.Create(context.Background(), mamaActor(venueID), CreateParams{
		Name: "  Aya  ",
		Role: enums.StaffRoleBartender,
		PIN:  "4821",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.Name != "Aya" {
		t.Fatalf("expected trimmed name, got %q", account.Name)
	}
	if account.PINHash == "4821" || account.PINHash == "" {
		t.Fatal("pin stored without hashing")
	}
	if !account.IsActive {
		t.Fatal("new staff should start active")
	}
	if _, ok := repo.accounts[account.ID]; !ok {
		t.Fatal("account not persisted")
	}
}

func TestCreateStaffRequiresMama(t *testing.T) {
	svc, _ := newStaffTestService(t)
	actor := Actor{StaffID: uuid.New(), VenueID: uuid.New(), Role: enums.StaffRoleBartender}

	_, err := svc.Create(context.Background(), actor, CreateParams{
		Name: "Kenji", Role: enums.StaffRoleBartender, PIN: "1234",
	})
	assertStaffCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateStaffRejectsBadPIN(t *testing.T) {
	svc, _ := newStaffTestService(t)
	actor := mamaActor(uuid.New())

	for _, pin := range []string{"12", "123456789", "12a4", ""} {
		_, err := svc.Create(context.Background(), actor, CreateParams{
			Name: "Kenji", Role: enums.StaffRoleBartender, PIN: pin,
		})
		assertStaffCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestCreateStaffRejectsDuplicatePIN(t *testing.T) {
	svc, _ := newStaffTestService(t)
	actor := mamaActor(uuid.New())
	ctx := context.Background()

	if _, err := svc.Create(ctx, actor, CreateParams{Name: "Aya", Role: enums.StaffRoleBartender, PIN: "4821"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, actor, CreateParams{Name: "Kenji", Role: enums.StaffRoleBartender, PIN: "4821"})
	assertStaffCode(t, err, pkgerrors.CodeConflict)

	// Same PIN at a different venue is fine.
	other := mamaActor(uuid.New())
	if _, err := svc.Create(ctx, other, CreateParams{Name: "Mio", Role: enums.StaffRoleBartender, PIN: "4821"}); err != nil {
		t.Fatalf("create at other venue: %v", err)
	}
}

func TestUpdateStaffChangesPINAndRole(t *testing.T) {
	svc, _ := newStaffTestService(t)
	actor := mamaActor(uuid.New())
	ctx := context.Background()

	account, err := svc.Create(ctx, actor, CreateParams{Name: "Aya", Role: enums.StaffRoleBartender, PIN: "4821"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldHash := account.PINHash

	newPIN := "9900"
	newRole := enums.StaffRoleMama
	updated, err := svc.Update(ctx, actor, account.ID, UpdateParams{PIN: &newPIN, Role: &newRole})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PINHash == oldHash {
		t.Fatal("pin hash not rotated")
	}
	if updated.Role != enums.StaffRoleMama {
		t.Fatalf("expected mama role, got %s", updated.Role)
	}
}

func TestUpdateStaffOwnDemotionRejected(t *testing.T) {
	svc, repo := newStaffTestService(t)
	venueID := uuid.New()
	actor := mamaActor(venueID)
	repo.accounts[actor.StaffID] = &models.StaffAccount{
		ID: actor.StaffID, VenueID: venueID, Name: "Mama", Role: enums.StaffRoleMama, IsActive: true,
	}

	bartender := enums.StaffRoleBartender
	_, err := svc.Update(context.Background(), actor, actor.StaffID, UpdateParams{Role: &bartender})
	assertStaffCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateStaffWrongVenue(t *testing.T) {
	svc, _ := newStaffTestService(t)
	ctx := context.Background()
	owner := mamaActor(uuid.New())

	account, err := svc.Create(ctx, owner, CreateParams{Name: "Aya", Role: enums.StaffRoleBartender, PIN: "4821"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Hijacked"
	_, err = svc.Update(ctx, mamaActor(uuid.New()), account.ID, UpdateParams{Name: &name})
	assertStaffCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteStaffSelfRejected(t *testing.T) {
	svc, repo := newStaffTestService(t)
	venueID := uuid.New()
	actor := mamaActor(venueID)
	repo.accounts[actor.StaffID] = &models.StaffAccount{
		ID: actor.StaffID, VenueID: venueID, Name: "Mama", Role: enums.StaffRoleMama, IsActive: true,
	}

	err := svc.Delete(context.Background(), actor, actor.StaffID)
	assertStaffCode(t, err, pkgerrors.CodeValidation)
	if _, ok := repo.accounts[actor.StaffID]; !ok {
		t.Fatal("account should not have been deleted")
	}
}

func TestDeleteStaffRemovesAccount(t *testing.T) {
	svc, repo := newStaffTestService(t)
	actor := mamaActor(uuid.New())
	ctx := context.Background()

	account, err := svc.Create(ctx, actor, CreateParams{Name: "Aya", Role: enums.StaffRoleBartender, PIN: "4821"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, actor, account.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.accounts[account.ID]; ok {
		t.Fatal("account still present after delete")
	}

	err = svc.Delete(ctx, actor, account.ID)
	assertStaffCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetActiveTogglesAndGuardsSelf(t *testing.T) {
	svc, repo := newStaffTestService(t)
	venueID := uuid.New()
	actor := mamaActor(venueID)
	repo.accounts[actor.StaffID] = &models.StaffAccount{
		ID: actor.StaffID, VenueID: venueID, Name: "Mama", Role: enums.StaffRoleMama, IsActive: true,
	}
	ctx := context.Background()

	account, err := svc.Create(ctx, actor, CreateParams{Name: "Aya", Role: enums.StaffRoleBartender, PIN: "4821"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deactivated, err := svc.SetActive(ctx, actor, account.ID, false)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if deactivated.IsActive {
		t.Fatal("expected account to be inactive")
	}

	_, err = svc.SetActive(ctx, actor, actor.StaffID, false)
	assertStaffCode(t, err, pkgerrors.CodeValidation)
}

func TestListByVenueScopes(t *testing.T) {
	svc, _ := newStaffTestService(t)
	ctx := context.Background()
	actorA := mamaActor(uuid.New())
	actorB := mamaActor(uuid.New())

	if _, err := svc.Create(ctx, actorA, CreateParams{Name: "Aya", Role: enums.StaffRoleBartender, PIN: "1111"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, actorB, CreateParams{Name: "Kenji", Role: enums.StaffRoleBartender, PIN: "2222"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	accounts, err := svc.ListByVenue(ctx, actorA)
	if err != nil {
		t.Fatalf("ListByVenue: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "Aya" {
		t.Fatalf("expected only Aya, got %+v", accounts)
	}
}
