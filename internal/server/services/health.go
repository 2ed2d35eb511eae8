package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/geotrack/internal/server/repositories/repomanager"
)

// HealthService probes the collaborator stores.
type HealthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	objects     ObjectStore
}

func NewHealthService(d Deps) *HealthService {
	return &HealthService{db: d.DB, repomanager: d.Repos, objects: d.Objects}
}

// Check returns the failing components keyed by name; empty means healthy.
func (s *HealthService) Check(ctx context.Context) map[string]error {
	failed := map[string]error{}
	if err := s.repomanager.Users(s.db).Ping(ctx); err != nil {
		failed["database"] = err
	}
	if s.objects != nil {
		if err := s.objects.Ping(ctx); err != nil {
			failed["object_store"] = err
		}
	}
	return failed
}
