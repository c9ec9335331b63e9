package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ProfileStore implementation — "profiles" collection, one row per uid
// ============================================================

// profileRow maps Supabase table columns to the domain profile.
type profileRow struct {
	UID         string `json:"uid"`
	AccountType string `json:"account_type"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Region      string `json:"region"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	CNPJ        string   `json:"cnpj"`
	CompanyName string   `json:"company_name"`
	Area        string   `json:"area"`
	MainCrops   []string `json:"main_crops"`

	CPF              string   `json:"cpf"`
	DateOfBirth      string   `json:"date_of_birth"`
	Specialties      []string `json:"specialties"`
	Certifications   []string `json:"certifications"`
	Experience       string   `json:"experience"`
	AvailableForHire bool     `json:"available_for_hire"`

	CRC               string `json:"crc"`
	Website           string `json:"website"`
	YearsOfExperience int    `json:"years_of_experience"`

	Description string `json:"description"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// GetProfile fetches the profile document for uid. Returns (nil, nil) when
// no document exists; the service layer decides whether that is an error.
func (c *Client) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	path := fmt.Sprintf("profiles?uid=eq.%s&limit=1", url.QueryEscape(uid))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || string(body) == "[]" {
		return nil, nil
	}

	var rows []profileRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase", Err: fmt.Errorf("decode profiles: %w", err)}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0].toDomain(), nil
}

// CreateProfile inserts a new profile document. The store stamps both
// timestamps; whatever the caller put in fields never overrides them.
func (c *Client) CreateProfile(ctx context.Context, uid string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	now := time.Now().UTC().Format(time.RFC3339)
	row := map[string]any{"uid": uid}
	for k, v := range fields {
		row[k] = v
	}
	row["created_at"] = now
	row["updated_at"] = now

	return c.doPost(ctx, "profiles", row)
}

// UpdateProfile merges fields into the document for uid and refreshes
// updated_at. Timestamps in fields are discarded for the same reason as in
// CreateProfile.
func (c *Client) UpdateProfile(ctx context.Context, uid string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	patch := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if k == "created_at" || k == "updated_at" || k == "uid" {
			continue
		}
		patch[k] = v
	}
	patch["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	path := fmt.Sprintf("profiles?uid=eq.%s", url.QueryEscape(uid))
	return c.doPatch(ctx, path, patch)
}

func (r *profileRow) toDomain() *domain.Profile {
	return &domain.Profile{
		UID:         r.UID,
		AccountType: domain.ParseAccountType(r.AccountType),
		FullName:    r.FullName,
		Email:       r.Email,
		Phone:       r.Phone,
		Region:      domain.Region(r.Region),

		Address: r.Address,
		City:    r.City,
		State:   r.State,
		ZipCode: r.ZipCode,

		CNPJ:        r.CNPJ,
		CompanyName: r.CompanyName,
		Area:        r.Area,
		MainCrops:   r.MainCrops,

		CPF:              r.CPF,
		DateOfBirth:      r.DateOfBirth,
		Specialties:      r.Specialties,
		Certifications:   r.Certifications,
		Experience:       r.Experience,
		AvailableForHire: r.AvailableForHire,

		CRC:               r.CRC,
		Website:           r.Website,
		YearsOfExperience: r.YearsOfExperience,

		Description: r.Description,

		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

// parseTimestamp converts the store's native timestamp representation to a
// standard time value. Postgres may serialize with or without a zone.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
