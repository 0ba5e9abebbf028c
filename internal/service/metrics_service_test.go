package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordCacheOperationConcurrent(t *testing.T) {
	svc := NewMetricsService()

	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		hit := i%2 == 0
		wg.Add(1)
		go func(hit bool) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				svc.RecordCacheOperation(hit, time.Microsecond)
			}
		}(hit)
	}
	wg.Wait()

	hits := atomic.LoadUint64(&svc.cacheHitCount)
	misses := atomic.LoadUint64(&svc.cacheMissCount)
	assert.Equal(t, uint64(goroutines/2*perGoroutine), hits)
	assert.Equal(t, uint64(goroutines/2*perGoroutine), misses)
}

func TestObserveHTTPRequest(t *testing.T) {
	svc := NewMetricsService()
	assert.NotPanics(t, func() {
		svc.ObserveHTTPRequest("GET", "/api/v1/grades", 200, 5*time.Millisecond)
		svc.ObserveCacheWrite(time.Millisecond)
	})
}
