package workouts

import (
	"context"
	"strconv"
	"strings"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	oneHour             = 60 * 60
	catalogCacheExpire  = oneHour * 12
	catalogCacheSizeMin = 512 * 1024
)

type exerciseLookup interface {
	GetByLabel(ctx context.Context, label string) (Exercise, error)
}

// CatalogResolver resolves exercise labels to catalog ids, with a cache in
// front of the store since the same handful of labels shows up in nearly
// every submitted workout.
type CatalogResolver struct {
	cache  *freecache.Cache
	lookup exerciseLookup
}

func NewCatalogResolver(lookup exerciseLookup, cacheSizeMegabytes int) *CatalogResolver {
	megabyte := 1024 * 1024
	cacheSize := cacheSizeMegabytes * megabyte
	if cacheSize < catalogCacheSizeMin {
		cacheSize = catalogCacheSizeMin
	}
	return &CatalogResolver{
		cache:  freecache.NewCache(cacheSize),
		lookup: lookup,
	}
}

// Resolve matches a label to its catalog id and tracking parameter by exact
// match. Only hits are cached; a miss always goes back to the store so a
// freshly added exercise resolves on the next submission.
func (r *CatalogResolver) Resolve(ctx context.Context, label string) (int, TrackingParam, bool) {
	cacheKey := []byte("label::" + label)
	if cached, err := r.cache.Get(cacheKey); err == nil {
		if id, param, ok := decodeCacheValue(string(cached)); ok {
			log.Tracef("resolved exercise label %q from cache", label)
			return id, param, true
		}
	}

	ex, err := r.lookup.GetByLabel(ctx, label)
	if err != nil {
		log.Debugf("exercise label %q lookup: %s", label, err)
		return 0, "", false
	}

	cacheValue := strconv.Itoa(ex.ID) + "|" + string(ex.TrackingParam)
	if err := r.cache.Set(cacheKey, []byte(cacheValue), catalogCacheExpire); err != nil {
		log.Errorf("failed to cache exercise label %q: %s", label, err)
	}

	return ex.ID, ex.TrackingParam, true
}

func decodeCacheValue(value string) (int, TrackingParam, bool) {
	idStr, paramStr, found := strings.Cut(value, "|")
	if !found {
		return 0, "", false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || !TrackingParam(paramStr).IsValid() {
		return 0, "", false
	}
	return id, TrackingParam(paramStr), true
}

// Invalidate drops one label from the cache, used after catalog edits.
func (r *CatalogResolver) Invalidate(label string) {
	r.cache.Del([]byte("label::" + label))
}
