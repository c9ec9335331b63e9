package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/cache"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/observability"
	"github.com/agroconecta/marketplace-bff-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockProfileStore struct {
	profile *domain.Profile
	err     error

	creates     int
	updates     int
	lastCreated map[string]any
	lastUpdated map[string]any
}

func (m *mockProfileStore) GetProfile(_ context.Context, _ string) (*domain.Profile, error) {
	return m.profile, m.err
}

func (m *mockProfileStore) CreateProfile(_ context.Context, uid string, fields map[string]any) error {
	m.creates++
	m.lastCreated = fields
	if m.profile == nil {
		m.profile = &domain.Profile{
			UID:         uid,
			AccountType: domain.ParseAccountType(str(fields["account_type"])),
		}
	}
	return nil
}

func (m *mockProfileStore) UpdateProfile(_ context.Context, _ string, fields map[string]any) error {
	m.updates++
	m.lastUpdated = fields
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func newProfileService(store *mockProfileStore) *service.ProfileService {
	return service.NewProfileService(
		store,
		cache.New[*domain.Profile](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

// --- Tests ---

func TestCreateInitialProfile_Idempotent(t *testing.T) {
	store := &mockProfileStore{}
	svc := newProfileService(store)

	base := domain.BaseProfile{FullName: "Maria Souza", Email: "maria@fazenda.com", Phone: "11987654321"}

	if err := svc.CreateInitialProfile(context.Background(), "uid-1", domain.AccountFarm, base); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := svc.CreateInitialProfile(context.Background(), "uid-1", domain.AccountFarm, base); err != nil {
		t.Fatalf("second create: %v", err)
	}

	if store.creates != 1 {
		t.Errorf("expected exactly 1 create, got %d", store.creates)
	}
	if store.updates != 0 {
		t.Errorf("expected 0 updates, got %d", store.updates)
	}
	if got := str(store.lastCreated["phone"]); got != "(11) 98765-4321" {
		t.Errorf("expected masked phone, got %q", got)
	}
	if _, ok := store.lastCreated["cnpj"]; !ok {
		t.Error("expected cnpj placeholder for farm account")
	}
}

func TestCreateInitialProfile_UnknownType(t *testing.T) {
	store := &mockProfileStore{}
	svc := newProfileService(store)

	err := svc.CreateInitialProfile(context.Background(), "uid-1", domain.AccountUnknown, domain.BaseProfile{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.creates != 0 {
		t.Errorf("expected 0 creates, got %d", store.creates)
	}
}

func TestSaveProfile_CreatesWhenMissing(t *testing.T) {
	store := &mockProfileStore{}
	svc := newProfileService(store)

	req := &domain.ProfileUpdate{
		AccountType: "farm",
		FullName:    "Fazenda Boa Vista",
		Email:       "contato@boavista.com",
		CNPJ:        "12345678000190",
		MainCrops:   "Soja, Milho",
	}

	p, err := svc.SaveProfile(context.Background(), "uid-2", req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.creates != 1 || store.updates != 0 {
		t.Errorf("expected 1 create and 0 updates, got %d/%d", store.creates, store.updates)
	}
	if p.AccountType != domain.AccountFarm {
		t.Errorf("expected farm account, got %q", p.AccountType)
	}
	if got := str(store.lastCreated["cnpj"]); got != "12.345.678/0001-90" {
		t.Errorf("expected masked CNPJ, got %q", got)
	}
	crops, _ := store.lastCreated["main_crops"].([]string)
	if len(crops) != 2 || crops[0] != "Soja" || crops[1] != "Milho" {
		t.Errorf("expected parsed crop list, got %v", crops)
	}
}

func TestSaveProfile_UpdateIgnoresSubmittedAccountType(t *testing.T) {
	store := &mockProfileStore{profile: &domain.Profile{UID: "uid-3", AccountType: domain.AccountOperator}}
	svc := newProfileService(store)

	// The stored type wins even when the payload claims another role.
	req := &domain.ProfileUpdate{
		AccountType: "farm",
		FullName:    "José Lima",
		Email:       "jose@operador.com",
		CPF:         "12345678901",
	}

	if _, err := svc.SaveProfile(context.Background(), "uid-3", req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.updates != 1 || store.creates != 0 {
		t.Errorf("expected 1 update and 0 creates, got %d/%d", store.updates, store.creates)
	}
	if got := str(store.lastUpdated["cpf"]); got != "123.456.789-01" {
		t.Errorf("expected masked CPF, got %q", got)
	}
	if got := str(store.lastUpdated["cnpj"]); got != "" {
		t.Errorf("expected cnpj blanked for operator, got %q", got)
	}
}

func TestUpdateProfile_ConsultantIndividualClearsCompanyIdentity(t *testing.T) {
	store := &mockProfileStore{profile: &domain.Profile{UID: "uid-4", AccountType: domain.AccountConsultant}}
	svc := newProfileService(store)

	req := &domain.ProfileUpdate{
		FullName:    "Ana Costa",
		Email:       "ana@agro.com",
		ProfileType: "individual",
		CPF:         "98765432100",
		CNPJ:        "12345678000190",
		CompanyName: "Agro Consultoria Ltda",
		CRC:         "CRC-SP 123456",
	}

	if _, err := svc.UpdateProfile(context.Background(), "uid-4", req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := str(store.lastUpdated["cnpj"]); got != "" {
		t.Errorf("expected cnpj cleared, got %q", got)
	}
	if got := str(store.lastUpdated["company_name"]); got != "" {
		t.Errorf("expected company_name cleared, got %q", got)
	}
	if got := str(store.lastUpdated["cpf"]); got != "987.654.321-00" {
		t.Errorf("expected masked CPF kept, got %q", got)
	}
}

func TestUpdateProfile_ConsultantCompanyClearsCPF(t *testing.T) {
	store := &mockProfileStore{profile: &domain.Profile{UID: "uid-5", AccountType: domain.AccountConsultant}}
	svc := newProfileService(store)

	req := &domain.ProfileUpdate{
		FullName:    "Ana Costa",
		Email:       "ana@agro.com",
		ProfileType: "company",
		CPF:         "98765432100",
		CNPJ:        "12345678000190",
		CompanyName: "Agro Consultoria Ltda",
		CRC:         "CRC-SP 123456",
	}

	if _, err := svc.UpdateProfile(context.Background(), "uid-5", req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := str(store.lastUpdated["cpf"]); got != "" {
		t.Errorf("expected cpf cleared, got %q", got)
	}
	if got := str(store.lastUpdated["cnpj"]); got != "12.345.678/0001-90" {
		t.Errorf("expected masked CNPJ kept, got %q", got)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	store := &mockProfileStore{}
	svc := newProfileService(store)

	_, err := svc.UpdateProfile(context.Background(), "uid-missing", &domain.ProfileUpdate{
		FullName: "X", Email: "x@x.com",
	})
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
	if store.updates != 0 {
		t.Errorf("expected 0 updates, got %d", store.updates)
	}
}

func TestUpdateProfile_RequiredFields(t *testing.T) {
	store := &mockProfileStore{profile: &domain.Profile{UID: "uid-6", AccountType: domain.AccountFarm}}
	svc := newProfileService(store)

	cases := map[string]*domain.ProfileUpdate{
		"missing name":  {Email: "x@x.com", CNPJ: "12345678000190"},
		"missing email": {FullName: "X", CNPJ: "12345678000190"},
		"missing cnpj":  {FullName: "X", Email: "x@x.com"},
		"bad region":    {FullName: "X", Email: "x@x.com", CNPJ: "12345678000190", Region: "oeste"},
		"bad state":     {FullName: "X", Email: "x@x.com", CNPJ: "12345678000190", State: "São Paulo"},
	}

	for name, req := range cases {
		_, err := svc.UpdateProfile(context.Background(), "uid-6", req)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	if store.updates != 0 {
		t.Errorf("expected 0 updates, got %d", store.updates)
	}
}

func TestGetProfile_CachesSecondRead(t *testing.T) {
	store := &mockProfileStore{profile: &domain.Profile{UID: "uid-7", AccountType: domain.AccountFarm}}
	svc := newProfileService(store)

	if _, err := svc.GetProfile(context.Background(), "uid-7"); err != nil {
		t.Fatalf("first read: %v", err)
	}

	store.err = errors.New("supabase down")
	if _, err := svc.GetProfile(context.Background(), "uid-7"); err != nil {
		t.Fatalf("expected cached read to succeed, got %v", err)
	}
}
