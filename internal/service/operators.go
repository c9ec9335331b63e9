package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var operatorsTracer = otel.Tracer("service/operators")

// OperatorDirectory serves the browse page: a fixed in-memory dataset
// filtered by a live search term. The dataset stands in for a future
// paginated query against the profile store, so handlers never see where the
// entries come from.
type OperatorDirectory struct {
	operators []domain.OperatorCard
	profiles  *ProfileService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewOperatorDirectory creates the directory over the given dataset.
func NewOperatorDirectory(operators []domain.OperatorCard, profiles *ProfileService, metrics *observability.Metrics, logger *zap.Logger) *OperatorDirectory {
	return &OperatorDirectory{
		operators: operators,
		profiles:  profiles,
		metrics:   metrics,
		logger:    logger,
	}
}

// Search filters the directory by a case-insensitive substring match against
// name, each specialty, city and state — an entry matches when the term
// appears in any of those fields. A blank term returns everything.
func (d *OperatorDirectory) Search(ctx context.Context, term string) *domain.OperatorSearchResult {
	_, span := operatorsTracer.Start(ctx, "OperatorDirectory.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.term", term))

	d.metrics.IncrSearch("operators")

	term = strings.ToLower(strings.TrimSpace(term))

	matched := make([]domain.OperatorCard, 0, len(d.operators))
	for _, op := range d.operators {
		if term == "" || matchesOperator(op, term) {
			matched = append(matched, op)
		}
	}

	available := 0
	for _, op := range matched {
		if op.AvailableForHire {
			available++
		}
	}

	return &domain.OperatorSearchResult{
		Operators: matched,
		Total:     len(matched),
		Available: available,
	}
}

// Stats returns the unfiltered directory counters for the dashboard.
func (d *OperatorDirectory) Stats(ctx context.Context) domain.DirectoryStats {
	_, span := operatorsTracer.Start(ctx, "OperatorDirectory.Stats")
	defer span.End()

	available := 0
	for _, op := range d.operators {
		if op.AvailableForHire {
			available++
		}
	}
	return domain.DirectoryStats{
		TotalOperators:     len(d.operators),
		AvailableOperators: available,
	}
}

// Contact is the placeholder contact action: only farm accounts may reach
// out to an operator, and until the real contact transaction exists the
// reply is a fixed message.
func (d *OperatorDirectory) Contact(ctx context.Context, viewerUID, operatorID string) (*domain.ContactResponse, error) {
	ctx, span := operatorsTracer.Start(ctx, "OperatorDirectory.Contact")
	defer span.End()
	span.SetAttributes(
		attribute.String("viewer.uid", viewerUID),
		attribute.String("operator.id", operatorID),
	)

	viewer, err := d.profiles.GetProfile(ctx, viewerUID)
	if err != nil {
		return nil, fmt.Errorf("load viewer profile: %w", err)
	}
	if viewer.AccountType != domain.AccountFarm {
		return nil, &domain.ErrForbidden{Action: "apenas contas de fazenda podem contatar operadores"}
	}

	for _, op := range d.operators {
		if op.ID == operatorID {
			d.logger.Info("contact requested",
				zap.String("viewer_uid", viewerUID),
				zap.String("operator_id", operatorID),
			)
			return &domain.ContactResponse{
				OperatorID:   op.ID,
				OperatorName: op.FullName,
				Message:      fmt.Sprintf("Funcionalidade de contato será implementada em breve. Operador: %s", op.FullName),
			}, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "operator", ID: operatorID}
}

func matchesOperator(op domain.OperatorCard, term string) bool {
	if strings.Contains(strings.ToLower(op.FullName), term) {
		return true
	}
	for _, s := range op.Specialties {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(op.City), term) {
		return true
	}
	return strings.Contains(strings.ToLower(op.State), term)
}
