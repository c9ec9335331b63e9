// Package service — ProfileService is the façade over the profile document
// store: read by uid, idempotent initial create, full save (upsert) and the
// partial update used by every edit form.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/observability"
	"github.com/agroconecta/marketplace-bff-go/internal/masks"
	"github.com/agroconecta/marketplace-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var profileTracer = otel.Tracer("service/profile")

// ProfileService orchestrates profile reads and writes. All normalization
// happens here, on every write: masks are re-applied, comma-joined lists are
// split and cleaned, and fields outside the profile's account type are
// blanked so nothing stale survives a save.
type ProfileService struct {
	store   port.ProfileStore
	cache   port.Cache[*domain.Profile]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewProfileService creates the profile service with all dependencies injected.
func NewProfileService(store port.ProfileStore, cache port.Cache[*domain.Profile], metrics *observability.Metrics, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// GetProfile returns the profile for uid, or ErrNotFound when no document
// exists.
func (s *ProfileService) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	cacheKey := fmt.Sprintf("profile:%s", uid)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("profile")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("profile")

	p, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, fmt.Errorf("profile fetch: %w", err)
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: uid}
	}

	s.cache.Set(cacheKey, p)
	return p, nil
}

// CreateInitialProfile writes the registration-time profile document: base
// fields, the chosen account type and an empty placeholder for the type's
// identity field. If a document for uid already exists the call is a no-op
// with zero writes, which makes registration retry-safe.
func (s *ProfileService) CreateInitialProfile(ctx context.Context, uid string, accountType domain.AccountType, base domain.BaseProfile) error {
	ctx, span := profileTracer.Start(ctx, "ProfileService.CreateInitialProfile")
	defer span.End()
	span.SetAttributes(
		attribute.String("profile.uid", uid),
		attribute.String("profile.account_type", string(accountType)),
	)

	existing, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return fmt.Errorf("check existing profile: %w", err)
	}
	if existing != nil {
		s.logger.Debug("initial profile already exists, skipping create",
			zap.String("uid", uid),
		)
		return nil
	}

	if base.Region != "" && !domain.Region(base.Region).Valid() {
		return &domain.ErrValidation{Field: "region", Message: "Região inválida"}
	}

	fields := map[string]any{
		"account_type": string(accountType),
		"full_name":    strings.TrimSpace(base.FullName),
		"email":        strings.TrimSpace(base.Email),
		"phone":        masks.Phone(base.Phone),
		"region":       base.Region,
	}

	switch accountType {
	case domain.AccountFarm:
		fields["cnpj"] = ""
	case domain.AccountOperator, domain.AccountConsultant:
		fields["cpf"] = ""
	case domain.AccountUnknown:
		return &domain.ErrValidation{Field: "accountType", Message: "Tipo de conta inválido"}
	default:
		return &domain.ErrValidation{Field: "accountType", Message: "Tipo de conta inválido"}
	}

	if err := s.store.CreateProfile(ctx, uid, fields); err != nil {
		s.metrics.IncrExternalError("supabase")
		return fmt.Errorf("create initial profile: %w", err)
	}

	s.cache.Delete(fmt.Sprintf("profile:%s", uid))
	s.logger.Info("initial profile created",
		zap.String("uid", uid),
		zap.String("account_type", string(accountType)),
	)
	return nil
}

// SaveProfile is the full-profile upsert: it updates the document when
// present (refreshing updatedAt) and creates it otherwise (setting both
// timestamps). On create the account type comes from the request; on update
// the stored type is authoritative and the request's is ignored.
func (s *ProfileService) SaveProfile(ctx context.Context, uid string, req *domain.ProfileUpdate) (*domain.Profile, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.SaveProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	existing, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, fmt.Errorf("check existing profile: %w", err)
	}

	if existing == nil {
		accountType := domain.ParseAccountType(req.AccountType)
		fields, err := normalizeForType(accountType, req)
		if err != nil {
			return nil, err
		}
		fields["account_type"] = string(accountType)
		if err := s.store.CreateProfile(ctx, uid, fields); err != nil {
			s.metrics.IncrExternalError("supabase")
			return nil, fmt.Errorf("create profile: %w", err)
		}
		s.metrics.IncrProfileSave(string(accountType))
		return s.reload(ctx, uid)
	}

	fields, err := normalizeForType(existing.AccountType, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateProfile(ctx, uid, fields); err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.metrics.IncrProfileSave(string(existing.AccountType))
	return s.reload(ctx, uid)
}

// UpdateProfile merges the fields of one edit-form submit into the existing
// document and refreshes updatedAt. It fails with ErrNotFound when the
// document does not exist — the caller is expected to have created it at
// registration.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, req *domain.ProfileUpdate) (*domain.Profile, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	existing, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if existing == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: uid}
	}

	fields, err := normalizeForType(existing.AccountType, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateProfile(ctx, uid, fields); err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.metrics.IncrProfileSave(string(existing.AccountType))
	s.logger.Info("profile updated",
		zap.String("uid", uid),
		zap.String("account_type", string(existing.AccountType)),
	)
	return s.reload(ctx, uid)
}

// reload re-reads the document after a write so callers see canonical
// store-assigned timestamps, and refreshes the cache entry.
func (s *ProfileService) reload(ctx context.Context, uid string) (*domain.Profile, error) {
	s.cache.Delete(fmt.Sprintf("profile:%s", uid))
	return s.GetProfile(ctx, uid)
}

// normalizeForType is the single dispatch point of the editing contract:
// exhaustive over the closed account-type union. It canonicalizes every
// masked field, splits comma-joined lists, and blanks the fields of the
// inactive roles. The returned map holds store column names.
func normalizeForType(t domain.AccountType, req *domain.ProfileUpdate) (map[string]any, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, &domain.ErrValidation{Field: "fullName", Message: "Nome é obrigatório"}
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "E-mail é obrigatório"}
	}
	if req.Region != "" && !domain.Region(req.Region).Valid() {
		return nil, &domain.ErrValidation{Field: "region", Message: "Região inválida"}
	}
	state := strings.ToUpper(strings.TrimSpace(req.State))
	if len(state) > 2 {
		return nil, &domain.ErrValidation{Field: "state", Message: "Estado deve ser a sigla de 2 letras"}
	}

	fields := map[string]any{
		"full_name":   fullName,
		"email":       email,
		"phone":       masks.Phone(req.Phone),
		"region":      req.Region,
		"address":     strings.TrimSpace(req.Address),
		"city":        strings.TrimSpace(req.City),
		"state":       state,
		"zip_code":    masks.CEP(req.ZipCode),
		"description": strings.TrimSpace(req.Description),
	}

	switch t {
	case domain.AccountFarm:
		cnpj := masks.CNPJ(req.CNPJ)
		if cnpj == "" {
			return nil, &domain.ErrValidation{Field: "cnpj", Message: "CNPJ é obrigatório"}
		}
		fields["cnpj"] = cnpj
		fields["company_name"] = strings.TrimSpace(req.CompanyName)
		fields["area"] = masks.Decimal(req.Area)
		fields["main_crops"] = domain.ParseList(req.MainCrops)
		blank(fields,
			"cpf", "date_of_birth", "experience", "crc", "website")
		fields["specialties"] = []string{}
		fields["certifications"] = []string{}
		fields["available_for_hire"] = false
		fields["years_of_experience"] = 0

	case domain.AccountOperator:
		cpf := masks.CPF(req.CPF)
		if cpf == "" {
			return nil, &domain.ErrValidation{Field: "cpf", Message: "CPF é obrigatório"}
		}
		fields["cpf"] = cpf
		fields["date_of_birth"] = strings.TrimSpace(req.DateOfBirth)
		fields["specialties"] = domain.ParseList(req.Specialties)
		fields["certifications"] = domain.ParseList(req.Certifications)
		fields["experience"] = strings.TrimSpace(req.Experience)
		fields["available_for_hire"] = req.AvailableForHire
		blank(fields,
			"cnpj", "company_name", "area", "crc", "website")
		fields["main_crops"] = []string{}
		fields["years_of_experience"] = 0

	case domain.AccountConsultant:
		crc := strings.TrimSpace(req.CRC)
		if crc == "" {
			return nil, &domain.ErrValidation{Field: "crc", Message: "CRC é obrigatório"}
		}
		if req.YearsOfExperience < 0 {
			return nil, &domain.ErrValidation{Field: "yearsOfExperience", Message: "Anos de experiência deve ser um número não negativo"}
		}

		identity := domain.ConsultantIdentity(req.ProfileType)
		if identity == "" {
			identity = domain.IdentityIndividual
		}
		switch identity {
		case domain.IdentityIndividual:
			// individual clears the company identity regardless of prior values
			fields["cpf"] = masks.CPF(req.CPF)
			fields["cnpj"] = ""
			fields["company_name"] = ""
		case domain.IdentityCompany:
			cnpj := masks.CNPJ(req.CNPJ)
			if cnpj == "" {
				return nil, &domain.ErrValidation{Field: "cnpj", Message: "CNPJ é obrigatório"}
			}
			fields["cnpj"] = cnpj
			fields["company_name"] = strings.TrimSpace(req.CompanyName)
			fields["cpf"] = ""
		default:
			return nil, &domain.ErrValidation{Field: "profileType", Message: "Tipo de perfil inválido"}
		}

		fields["crc"] = crc
		fields["website"] = strings.TrimSpace(req.Website)
		fields["specialties"] = domain.ParseList(req.Specialties)
		fields["certifications"] = domain.ParseList(req.Certifications)
		fields["years_of_experience"] = req.YearsOfExperience
		blank(fields, "date_of_birth", "experience", "area")
		fields["main_crops"] = []string{}
		fields["available_for_hire"] = false

	case domain.AccountUnknown:
		return nil, &domain.ErrValidation{Field: "accountType", Message: "Tipo de conta desconhecido"}
	default:
		return nil, &domain.ErrValidation{Field: "accountType", Message: "Tipo de conta desconhecido"}
	}

	return fields, nil
}

func blank(fields map[string]any, keys ...string) {
	for _, k := range keys {
		fields[k] = ""
	}
}
