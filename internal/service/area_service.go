package service

import (
	"context"
	"time"

	"cajachica/internal/repository"

	"github.com/patrickmn/go-cache"
)

const areasCacheKey = "areas:all"

type AreaService interface {
	List(ctx context.Context) ([]AreaSummary, error)
}

type areaService struct {
	areas repository.AreaRepository
	cache *cache.Cache // nil when caching is disabled
}

// NewAreaService serves the area catalogue. A positive ttl keeps the list in
// memory for that long since areas only change through seeding.
func NewAreaService(areas repository.AreaRepository, ttl time.Duration) AreaService {
	s := &areaService{areas: areas}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *areaService) List(ctx context.Context) ([]AreaSummary, error) {
	if s.cache != nil {
		if x, found := s.cache.Get(areasCacheKey); found {
			return x.([]AreaSummary), nil
		}
	}

	areas, err := s.areas.ListAll(ctx)
	if err != nil {
		return nil, internalErr("failed to list areas", err)
	}
	result := make([]AreaSummary, 0, len(areas))
	for i := range areas {
		result = append(result, *toAreaSummary(&areas[i]))
	}

	if s.cache != nil {
		s.cache.Set(areasCacheKey, result, cache.DefaultExpiration)
	}
	return result, nil
}
