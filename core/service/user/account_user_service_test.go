package user

import (
	"context"
	"errors"
	"testing"

	"account_server/core/domain"
	in "account_server/core/port/in"
	"account_server/core/port/out"
	"account_server/pkg/apperr"

	"github.com/google/uuid"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeAddressRepo struct {
	byUserID    map[uuid.UUID]*domain.Address
	createCalls int
	updateCalls int
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{byUserID: make(map[uuid.UUID]*domain.Address)}
}

func (f *fakeAddressRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Address, error) {
	a, ok := f.byUserID[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddressRepo) Create(_ context.Context, address *domain.Address) error {
	f.createCalls++
	cp := *address
	f.byUserID[address.UserID] = &cp
	return nil
}

func (f *fakeAddressRepo) Update(_ context.Context, address *domain.Address) error {
	f.updateCalls++
	cp := *address
	f.byUserID[address.UserID] = &cp
	return nil
}

func (f *fakeAddressRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	delete(f.byUserID, userID)
	return nil
}

type fakeUserRepo struct {
	byID      map[uuid.UUID]*domain.User
	addresses *fakeAddressRepo
}

func newFakeUserRepo(addresses *fakeAddressRepo) *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]*domain.User), addresses: addresses}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	if a, ok := f.addresses.byUserID[id]; ok {
		ac := *a
		cp.Address = &ac
	}
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context, page *domain.PageRequest) ([]*domain.User, int64, error) {
	var users []*domain.User
	for _, u := range f.byID {
		cp := *u
		users = append(users, &cp)
	}
	return users, int64(len(f.byID)), nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperr.AlreadyExists("user")
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	cp := *user
	cp.Address = nil
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeZipcodeProvider struct {
	info  *domain.ZipcodeInfo
	err   error
	calls int
}

func (f *fakeZipcodeProvider) Lookup(_ context.Context, zipcode string) (*domain.ZipcodeInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.Zipcode = zipcode
	return &info, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, digest string) bool  { return "hashed:"+plaintext == digest }

// =============================================================================
// Fixtures
// =============================================================================

func newTestService() (in.UserService, *fakeUserRepo, *fakeAddressRepo, *fakeZipcodeProvider) {
	addresses := newFakeAddressRepo()
	users := newFakeUserRepo(addresses)
	zipcodes := &fakeZipcodeProvider{
		info: &domain.ZipcodeInfo{
			Street:       "Praca da Se",
			Neighborhood: "Se",
			City:         "Sao Paulo",
			State:        "SP",
		},
	}
	svc := NewService(users, addresses, zipcodes, fakeHasher{})
	return svc, users, addresses, zipcodes
}

func validCreateRequest() *in.CreateUserRequest {
	return &in.CreateUserRequest{
		Email:     "ana@example.com",
		Password:  "supersecret",
		FirstName: "Ana",
		LastName:  "Souza",
	}
}

func mustCreate(t *testing.T, svc in.UserService, req *in.CreateUserRequest) *domain.User {
	t.Helper()
	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return result.User
}

func str(s string) *string { return &s }

// =============================================================================
// Create
// =============================================================================

func TestCreate_WithResolvedZipcode(t *testing.T) {
	svc, _, addresses, _ := newTestService()

	req := validCreateRequest()
	req.Zipcode = "01001000"

	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if result.Notice != "" {
		t.Errorf("unexpected notice %q", result.Notice)
	}
	if result.User.Address == nil {
		t.Fatal("expected address on created user")
	}
	if result.User.Address.Zipcode != "01001000" {
		t.Errorf("address zipcode = %q, want 01001000", result.User.Address.Zipcode)
	}
	if result.User.Address.City != "Sao Paulo" {
		t.Errorf("address city = %q, want Sao Paulo", result.User.Address.City)
	}
	if result.User.PasswordHash != "hashed:supersecret" {
		t.Errorf("password was not hashed: %q", result.User.PasswordHash)
	}
	if addresses.createCalls != 1 {
		t.Errorf("address create calls = %d, want 1", addresses.createCalls)
	}
}

func TestCreate_WithoutZipcodeSkipsLookup(t *testing.T) {
	svc, _, addresses, zipcodes := newTestService()

	result, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if result.User.Address != nil {
		t.Error("expected no address")
	}
	if zipcodes.calls != 0 {
		t.Errorf("lookup calls = %d, want 0", zipcodes.calls)
	}
	if addresses.createCalls != 0 {
		t.Errorf("address create calls = %d, want 0", addresses.createCalls)
	}
}

func TestCreate_LookupFailureStillCreatesUser(t *testing.T) {
	svc, users, _, zipcodes := newTestService()
	zipcodes.err = out.ErrZipcodeNotFound

	req := validCreateRequest()
	req.Zipcode = "99999999"

	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if result.User.Address != nil {
		t.Error("expected no address when lookup fails")
	}
	if result.Notice == "" {
		t.Error("expected a notice about the unresolved zipcode")
	}
	if len(users.byID) != 1 {
		t.Errorf("user count = %d, want 1", len(users.byID))
	}
}

func TestCreate_DuplicateEmailWritesNothing(t *testing.T) {
	svc, users, _, _ := newTestService()
	mustCreate(t, svc, validCreateRequest())

	_, err := svc.Create(context.Background(), validCreateRequest())
	if !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("Create() error = %v, want ALREADY_EXISTS", err)
	}
	if len(users.byID) != 1 {
		t.Errorf("user count = %d, want 1", len(users.byID))
	}
}

func TestCreate_InvalidPayloadReportsAllIssues(t *testing.T) {
	svc, users, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &in.CreateUserRequest{})
	if !apperr.IsCode(err, apperr.CodeValidationFailed) {
		t.Fatalf("Create() error = %v, want VALIDATION_FAILED", err)
	}

	appErr := apperr.AsAppError(err)
	issues, ok := appErr.Details["issues"].([]FieldIssue)
	if !ok {
		t.Fatalf("details issues missing or wrong type: %#v", appErr.Details)
	}
	if len(issues) != 4 {
		t.Errorf("issue count = %d, want 4", len(issues))
	}
	if len(users.byID) != 0 {
		t.Errorf("user count = %d, want 0", len(users.byID))
	}
}

// =============================================================================
// Update
// =============================================================================

func TestUpdate_EmptyPayloadRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	u := mustCreate(t, svc, validCreateRequest())

	_, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{})
	if !apperr.IsCode(err, apperr.CodeBadRequest) {
		t.Fatalf("Update() error = %v, want BAD_REQUEST", err)
	}
}

func TestUpdate_UnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Update(context.Background(), uuid.New(), &in.UpdateUserRequest{
		FirstName: str("Maria"),
	})
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Update() error = %v, want NOT_FOUND", err)
	}
}

func TestUpdate_SameZipcodeIsIdempotent(t *testing.T) {
	svc, _, addresses, _ := newTestService()

	req := validCreateRequest()
	req.Zipcode = "01001000"
	u := mustCreate(t, svc, req)

	result, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{
		Zipcode: str("01001000"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if addresses.updateCalls != 0 {
		t.Errorf("address update calls = %d, want 0", addresses.updateCalls)
	}
	if addresses.createCalls != 1 {
		t.Errorf("address create calls = %d, want 1", addresses.createCalls)
	}
	if result.User.Address.ID != u.Address.ID {
		t.Error("address identity changed on idempotent update")
	}
}

func TestUpdate_NewZipcodeUpdatesAddressInPlace(t *testing.T) {
	svc, _, addresses, _ := newTestService()

	req := validCreateRequest()
	req.Zipcode = "01001000"
	u := mustCreate(t, svc, req)

	result, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{
		Zipcode: str("20040002"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if result.User.Address.ID != u.Address.ID {
		t.Error("expected the existing address row to be updated, not replaced")
	}
	if result.User.Address.Zipcode != "20040002" {
		t.Errorf("address zipcode = %q, want 20040002", result.User.Address.Zipcode)
	}
	if addresses.updateCalls != 1 {
		t.Errorf("address update calls = %d, want 1", addresses.updateCalls)
	}
}

func TestUpdate_ZipcodeCreatesAddressWhenMissing(t *testing.T) {
	svc, _, addresses, _ := newTestService()
	u := mustCreate(t, svc, validCreateRequest())

	result, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{
		Zipcode: str("01001000"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if result.User.Address == nil {
		t.Fatal("expected address after update")
	}
	if addresses.createCalls != 1 {
		t.Errorf("address create calls = %d, want 1", addresses.createCalls)
	}
}

func TestUpdate_LookupFailureKeepsAddressAndAppliesFields(t *testing.T) {
	svc, _, addresses, zipcodes := newTestService()

	req := validCreateRequest()
	req.Zipcode = "01001000"
	u := mustCreate(t, svc, req)

	zipcodes.err = errors.New("upstream down")

	result, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{
		FirstName: str("Maria"),
		Zipcode:   str("20040002"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if result.Notice == "" {
		t.Error("expected a notice about the unresolved zipcode")
	}
	if result.User.FirstName != "Maria" {
		t.Errorf("first name = %q, want Maria", result.User.FirstName)
	}
	if result.User.Address.Zipcode != "01001000" {
		t.Errorf("address zipcode = %q, want the previous 01001000", result.User.Address.Zipcode)
	}
	if addresses.updateCalls != 0 {
		t.Errorf("address update calls = %d, want 0", addresses.updateCalls)
	}
}

func TestUpdate_DuplicateEmailRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	mustCreate(t, svc, validCreateRequest())

	other := validCreateRequest()
	other.Email = "bia@example.com"
	u := mustCreate(t, svc, other)

	_, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{
		Email: str("ana@example.com"),
	})
	if !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("Update() error = %v, want ALREADY_EXISTS", err)
	}
}

func TestUpdate_KeepingOwnEmailIsAllowed(t *testing.T) {
	svc, _, _, _ := newTestService()
	u := mustCreate(t, svc, validCreateRequest())

	result, err := svc.Update(context.Background(), u.ID, &in.UpdateUserRequest{
		Email:    str("ana@example.com"),
		LastName: str("Silva"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if result.User.LastName != "Silva" {
		t.Errorf("last name = %q, want Silva", result.User.LastName)
	}
}

// =============================================================================
// Delete / Get
// =============================================================================

func TestDelete_RemovesAddressToo(t *testing.T) {
	svc, users, addresses, _ := newTestService()

	req := validCreateRequest()
	req.Zipcode = "01001000"
	u := mustCreate(t, svc, req)

	if err := svc.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(users.byID) != 0 {
		t.Errorf("user count = %d, want 0", len(users.byID))
	}
	if len(addresses.byUserID) != 0 {
		t.Errorf("address count = %d, want 0", len(addresses.byUserID))
	}
}

func TestDelete_UnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Delete() error = %v, want NOT_FOUND", err)
	}
}

func TestGetByID_UnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetByID(context.Background(), uuid.New())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("GetByID() error = %v, want NOT_FOUND", err)
	}
}

func TestList_ReturnsTotal(t *testing.T) {
	svc, _, _, _ := newTestService()
	mustCreate(t, svc, validCreateRequest())

	other := validCreateRequest()
	other.Email = "bia@example.com"
	mustCreate(t, svc, other)

	result, err := svc.List(context.Background(), &domain.PageRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
	if len(result.Users) != 2 {
		t.Errorf("user count = %d, want 2", len(result.Users))
	}
}
