package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/d60-Lab/gin-posts/config"
	"github.com/d60-Lab/gin-posts/internal/repository"
	"github.com/d60-Lab/gin-posts/internal/service"
	"github.com/d60-Lab/gin-posts/pkg/database"
	"github.com/d60-Lab/gin-posts/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

type result struct {
	id  int64
	d   time.Duration
	err error
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := must(database.InitDB(cfg))
	guard := database.NewGuard()
	repo := repository.NewPostRepository(db, guard)
	defer repo.Close()
	ctx := context.Background()
	if err := repo.InitSchema(ctx); err != nil {
		panic(err)
	}
	svc := service.NewPostService(repo)

	N := envInt("N", 5000)
	CONC := envInt("CONC", 16)
	if CONC > N {
		CONC = N
	}

	// concurrent creates
	feed := make(chan int, N)
	for i := 0; i < N; i++ {
		feed <- i
	}
	close(feed)
	results := make(chan result, N)
	done := make(chan struct{}, CONC)
	t0 := time.Now()
	for w := 0; w < CONC; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				p, err := svc.Create(ctx, fmt.Sprintf("bench %d", i), "body")
				r := result{d: time.Since(st), err: err}
				if p != nil {
					r.id = p.ID
				}
				results <- r
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < CONC; w++ {
		<-done
	}
	close(results)
	createDur := time.Since(t0)

	createLat := make([]time.Duration, 0, N)
	ids := make([]int64, 0, N)
	seen := make(map[int64]struct{}, N)
	failed, dup := 0, 0
	for r := range results {
		if r.err != nil {
			failed++
			continue
		}
		createLat = append(createLat, r.d)
		if _, ok := seen[r.id]; ok {
			dup++
		}
		seen[r.id] = struct{}{}
		ids = append(ids, r.id)
	}

	// list
	q0 := time.Now()
	posts := must(svc.List(ctx))
	listDur := time.Since(q0)

	// concurrent deletes of what we created
	delFeed := make(chan int64, len(ids))
	for _, id := range ids {
		delFeed <- id
	}
	close(delFeed)
	delCh := make(chan result, len(ids))
	t1 := time.Now()
	for w := 0; w < CONC; w++ {
		go func() {
			for id := range delFeed {
				st := time.Now()
				err := svc.Delete(ctx, id)
				delCh <- result{id: id, d: time.Since(st), err: err}
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < CONC; w++ {
		<-done
	}
	close(delCh)
	deleteDur := time.Since(t1)
	deleteLat := make([]time.Duration, 0, len(ids))
	delFailed := 0
	for r := range delCh {
		if r.err != nil {
			delFailed++
			continue
		}
		deleteLat = append(deleteLat, r.d)
	}

	stats := guard.Stats()
	fmt.Printf("N=%d CONC=%d driver=%s\n", N, CONC, cfg.Database.Driver)
	fmt.Printf("Create total: %v, per op: %v, p50: %v, p95: %v, p99: %v, failed=%d, duplicate ids=%d\n",
		createDur, createDur/time.Duration(N), pct(createLat, 0.50), pct(createLat, 0.95), pct(createLat, 0.99), failed, dup)
	fmt.Printf("List (%d rows): %v\n", len(posts), listDur)
	fmt.Printf("Delete total: %v, p50: %v, p95: %v, p99: %v, failed=%d\n",
		deleteDur, pct(deleteLat, 0.50), pct(deleteLat, 0.95), pct(deleteLat, 0.99), delFailed)
	fmt.Printf("Guard: acquisitions=%d contended=%d (%.1f%%)\n",
		stats.Acquisitions, stats.Contended, 100*float64(stats.Contended)/math.Max(1, float64(stats.Acquisitions)))
	if dup > 0 {
		os.Exit(1)
	}
}
