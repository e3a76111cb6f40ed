package utils

import (
	"sync"
	"time"
)

// WorkerPool bounds the number of in-flight detail fetches and enforces a
// minimum interval between request starts so the upstream site is not
// hammered. maxWorkers = 1 degrades to the strictly sequential baseline.
type WorkerPool struct {
	semaphore   chan struct{}
	minInterval time.Duration
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastStart   time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency cap and
// minimum start-to-start interval in milliseconds.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	return &WorkerPool{
		semaphore:   make(chan struct{}, maxWorkers),
		minInterval: time.Duration(rateLimitMs) * time.Millisecond,
		lastStart:   time.Now(),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.pace()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) pace() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	elapsed := time.Since(wp.lastStart)
	if elapsed < wp.minInterval {
		time.Sleep(wp.minInterval - elapsed)
	}
	wp.lastStart = time.Now()
}

// URLSet is a thread-safe set used to deduplicate detail URLs within a
// window; the first occurrence wins so upstream relevance order is kept.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been seen.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
