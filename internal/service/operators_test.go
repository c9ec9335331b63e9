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

func newDirectory(viewer *domain.Profile) *service.OperatorDirectory {
	profiles := service.NewProfileService(
		&mockProfileStore{profile: viewer},
		cache.New[*domain.Profile](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return service.NewOperatorDirectory(domain.SampleOperators(), profiles, observability.NewMetrics(), zap.NewNop())
}

func TestSearch_BlankTermReturnsAll(t *testing.T) {
	dir := newDirectory(nil)

	result := dir.Search(context.Background(), "  ")

	if result.Total != 6 {
		t.Errorf("expected 6 operators, got %d", result.Total)
	}
	if result.Available != 5 {
		t.Errorf("expected 5 available, got %d", result.Available)
	}
}

func TestSearch_MatchesSpecialtyCaseInsensitive(t *testing.T) {
	dir := newDirectory(nil)

	result := dir.Search(context.Background(), "COLHEITA")

	if result.Total != 4 {
		t.Fatalf("expected 4 matches, got %d", result.Total)
	}
	for _, op := range result.Operators {
		if op.FullName == "Miguel Costa" {
			t.Error("Miguel Costa has no matching specialty and should not match")
		}
	}
}

func TestSearch_MatchesCityAndState(t *testing.T) {
	dir := newDirectory(nil)

	byCity := dir.Search(context.Background(), "uberlândia")
	if byCity.Total != 1 || byCity.Operators[0].FullName != "Carlos Santos" {
		t.Errorf("expected only Carlos Santos by city, got %v", byCity.Operators)
	}

	byState := dir.Search(context.Background(), "sp")
	if byState.Total != 2 {
		t.Errorf("expected 2 operators in SP, got %d", byState.Total)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	dir := newDirectory(nil)

	result := dir.Search(context.Background(), "drone")

	if result.Total != 0 || len(result.Operators) != 0 {
		t.Errorf("expected empty result, got %v", result.Operators)
	}
}

func TestStats(t *testing.T) {
	dir := newDirectory(nil)

	stats := dir.Stats(context.Background())

	if stats.TotalOperators != 6 || stats.AvailableOperators != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestContact_FarmAccount(t *testing.T) {
	dir := newDirectory(&domain.Profile{UID: "farm-1", AccountType: domain.AccountFarm})

	resp, err := dir.Contact(context.Background(), "farm-1", "3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.OperatorName != "Pedro Oliveira" {
		t.Errorf("expected Pedro Oliveira, got %q", resp.OperatorName)
	}
	if resp.Message == "" {
		t.Error("expected a placeholder message")
	}
}

func TestContact_NonFarmForbidden(t *testing.T) {
	dir := newDirectory(&domain.Profile{UID: "op-1", AccountType: domain.AccountOperator})

	_, err := dir.Contact(context.Background(), "op-1", "1")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestContact_UnknownOperator(t *testing.T) {
	dir := newDirectory(&domain.Profile{UID: "farm-1", AccountType: domain.AccountFarm})

	_, err := dir.Contact(context.Background(), "farm-1", "999")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}
