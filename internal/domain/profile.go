package domain

import (
	"strings"
	"time"
)

// AccountType is the closed set of marketplace roles. The zero value is
// AccountUnknown so an unrecognized tag coming from storage is an explicit
// case at every dispatch point instead of a silent fallthrough.
type AccountType string

const (
	AccountUnknown    AccountType = ""
	AccountFarm       AccountType = "farm"
	AccountOperator   AccountType = "operator"
	AccountConsultant AccountType = "consultant"
)

// ParseAccountType maps a stored or submitted tag to the closed set.
func ParseAccountType(s string) AccountType {
	switch AccountType(s) {
	case AccountFarm, AccountOperator, AccountConsultant:
		return AccountType(s)
	default:
		return AccountUnknown
	}
}

// Valid reports whether t is one of the three known roles.
func (t AccountType) Valid() bool {
	return t == AccountFarm || t == AccountOperator || t == AccountConsultant
}

// Region is the closed set of Brazilian macro-regions used for matching.
type Region string

const (
	RegionCentroOeste Region = "centro-oeste"
	RegionSudeste     Region = "sudeste"
	RegionSul         Region = "sul"
	RegionNordeste    Region = "nordeste"
	RegionNorte       Region = "norte"
)

// Valid reports whether r is a known region. The empty region is not valid;
// callers that allow an unset region check for "" first.
func (r Region) Valid() bool {
	switch r {
	case RegionCentroOeste, RegionSudeste, RegionSul, RegionNordeste, RegionNorte:
		return true
	}
	return false
}

// ConsultantIdentity selects which identity fields a consultant profile
// carries. It is a form-level toggle and is never persisted.
type ConsultantIdentity string

const (
	IdentityIndividual ConsultantIdentity = "individual"
	IdentityCompany    ConsultantIdentity = "company"
)

// Profile is one user's marketplace record: the shared base plus the union
// of role-specific fields. Which subset is semantically valid is determined
// by AccountType; writes blank the fields of the inactive roles so nothing
// stale survives a save.
//
// Masked fields (cpf, cnpj, zipCode, phone) store the punctuated display
// form, not raw digits.
type Profile struct {
	UID         string      `json:"uid"`
	AccountType AccountType `json:"accountType"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Region      Region      `json:"region,omitempty"`

	// Location (shared by all roles)
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`

	// Farm
	CNPJ        string   `json:"cnpj,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	Area        string   `json:"area,omitempty"`
	MainCrops   []string `json:"mainCrops,omitempty"`

	// Operator
	CPF              string   `json:"cpf,omitempty"`
	DateOfBirth      string   `json:"dateOfBirth,omitempty"`
	Specialties      []string `json:"specialties,omitempty"`
	Certifications   []string `json:"certifications,omitempty"`
	Experience       string   `json:"experience,omitempty"`
	AvailableForHire bool     `json:"availableForHire,omitempty"`

	// Consultant
	CRC               string `json:"crc,omitempty"`
	Website           string `json:"website,omitempty"`
	YearsOfExperience int    `json:"yearsOfExperience,omitempty"`

	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BaseProfile carries the fields collected at registration. The role-specific
// identity field starts as an empty placeholder and is filled in later
// through the edit flow.
type BaseProfile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Region   string `json:"region,omitempty"`
}

// ProfileUpdate is the submit payload of the role-specific edit forms.
// List-valued fields arrive as a single comma-joined string and are split,
// trimmed and empty-filtered on every write. Fields outside the profile's
// account type are ignored and blanked.
type ProfileUpdate struct {
	// AccountType is only honored when a full save creates a missing
	// document; on every other write the stored type is authoritative.
	AccountType string `json:"accountType,omitempty"`

	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Region   string `json:"region"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`

	// Farm
	CNPJ        string `json:"cnpj"`
	CompanyName string `json:"companyName"`
	Area        string `json:"area"`
	MainCrops   string `json:"mainCrops"`

	// Operator
	CPF              string `json:"cpf"`
	DateOfBirth      string `json:"dateOfBirth"`
	Specialties      string `json:"specialties"`
	Certifications   string `json:"certifications"`
	Experience       string `json:"experience"`
	AvailableForHire bool   `json:"availableForHire"`

	// Consultant
	ProfileType       string `json:"profileType"` // individual | company, not persisted
	CRC               string `json:"crc"`
	Website           string `json:"website"`
	YearsOfExperience int    `json:"yearsOfExperience"`

	Description string `json:"description"`
}

// ParseList splits a comma-joined form value into a clean list: entries are
// trimmed and empty entries removed. "Soja, Milho , " yields ["Soja" "Milho"].
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
