package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// DashboardService assembles the signed-in home summary. Profile and
// directory stats are independent, so they are fetched concurrently.
type DashboardService struct {
	profiles  *ProfileService
	directory *OperatorDirectory
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(profiles *ProfileService, directory *OperatorDirectory, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		profiles:  profiles,
		directory: directory,
		metrics:   metrics,
		logger:    logger,
	}
}

// Get returns the viewer's dashboard. A missing profile is still a valid
// dashboard (nil profile, fallback on the client); any other failure aborts.
func (s *DashboardService) Get(ctx context.Context, uid string) (*domain.Dashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("profile.uid", uid))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	var (
		profile *domain.Profile
		stats   domain.DirectoryStats
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.profiles.GetProfile(gCtx, uid)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				return nil // dashboard renders its fallback
			}
			return fmt.Errorf("dashboard profile: %w", err)
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		stats = s.directory.Stats(gCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}
	s.metrics.IncrRequest("success")

	if profile == nil {
		s.logger.Debug("dashboard without profile", zap.String("uid", uid))
	}

	return &domain.Dashboard{
		Profile:   profile,
		Directory: stats,
	}, nil
}
