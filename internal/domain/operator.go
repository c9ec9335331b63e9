package domain

// OperatorCard is one entry of the operator directory as shown on the
// browse page.
type OperatorCard struct {
	ID               string   `json:"id"`
	FullName         string   `json:"fullName"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone,omitempty"`
	Region           Region   `json:"region,omitempty"`
	Specialties      []string `json:"specialties,omitempty"`
	Rating           float64  `json:"rating"`
	TotalSearches    int      `json:"totalSearches"`
	AvailableForHire bool     `json:"availableForHire"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
}

// OperatorSearchResult is the payload of GET /v1/operators.
type OperatorSearchResult struct {
	Operators []OperatorCard `json:"operators"`
	Total     int            `json:"total"`
	Available int            `json:"available"`
}

// ContactResponse is the placeholder reply of the contact action until the
// real contact transaction exists.
type ContactResponse struct {
	OperatorID   string `json:"operatorId"`
	OperatorName string `json:"operatorName"`
	Message      string `json:"message"`
}

// SampleOperators returns the fixed directory dataset. It stands in for a
// future paginated query against the profile store.
func SampleOperators() []OperatorCard {
	return []OperatorCard{
		{
			ID:               "1",
			FullName:         "João Silva",
			Email:            "joao.silva@email.com",
			Phone:            "(16) 98765-4321",
			Region:           RegionSudeste,
			Specialties:      []string{"Colheita", "Plantio", "Pulverização"},
			Rating:           5.0,
			TotalSearches:    245,
			AvailableForHire: true,
			City:             "Ribeirão Preto",
			State:            "SP",
		},
		{
			ID:               "2",
			FullName:         "Carlos Santos",
			Email:            "carlos.santos@email.com",
			Phone:            "(34) 98765-4321",
			Region:           RegionSudeste,
			Specialties:      []string{"Operador de Máquinas", "Manutenção"},
			Rating:           4.9,
			TotalSearches:    189,
			AvailableForHire: true,
			City:             "Uberlândia",
			State:            "MG",
		},
		{
			ID:               "3",
			FullName:         "Pedro Oliveira",
			Email:            "pedro.oliveira@email.com",
			Phone:            "(67) 98765-4321",
			Region:           RegionCentroOeste,
			Specialties:      []string{"Colheitadeira", "Trator"},
			Rating:           5.0,
			TotalSearches:    312,
			AvailableForHire: true,
			City:             "Dourados",
			State:            "MS",
		},
		{
			ID:               "4",
			FullName:         "Miguel Costa",
			Email:            "miguel.costa@email.com",
			Phone:            "(45) 98765-4321",
			Region:           RegionSul,
			Specialties:      []string{"Plantio Direto", "Irrigação"},
			Rating:           4.9,
			TotalSearches:    156,
			AvailableForHire: true,
			City:             "Cascavel",
			State:            "PR",
		},
		{
			ID:               "5",
			FullName:         "Lucas Pereira",
			Email:            "lucas.pereira@email.com",
			Phone:            "(65) 98765-4321",
			Region:           RegionCentroOeste,
			Specialties:      []string{"Colheita", "Pulverização", "Plantio"},
			Rating:           4.8,
			TotalSearches:    203,
			AvailableForHire: true,
			City:             "Lucas do Rio Verde",
			State:            "MT",
		},
		{
			ID:               "6",
			FullName:         "Roberto Alves",
			Email:            "roberto.alves@email.com",
			Phone:            "(11) 98765-4321",
			Region:           RegionSudeste,
			Specialties:      []string{"Operador de Máquinas", "Colheita"},
			Rating:           4.7,
			TotalSearches:    128,
			AvailableForHire: false,
			City:             "Campinas",
			State:            "SP",
		},
	}
}
