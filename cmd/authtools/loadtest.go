package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/authtools"
	"github.com/MrEthical07/authtools/password"
	"github.com/MrEthical07/authtools/session"
	"github.com/MrEthical07/authtools/store/memory"
)

type loadtestOptions struct {
	users       int
	concurrency int
	ops         int
	redisAddr   string
	prefix      string
}

// NewLoadtestCmd creates the loadtest subcommand. It drives an in-process
// engine, so it measures the engine and the token store, not HTTP.
func NewLoadtestCmd() *cobra.Command {
	var opts loadtestOptions

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Measure validate, check and refresh throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoadtest(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.users, "users", 200, "number of users to register and log in")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().IntVar(&opts.ops, "ops", 20000, "operations per phase")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address; miniredis is used when empty")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "authtools-loadtest", "refresh token key prefix")

	return cmd
}

type seededUser struct {
	access  string
	refresh string
}

func runLoadtest(ctx context.Context, out io.Writer, opts loadtestOptions) error {
	if opts.users <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("users, concurrency and ops must be > 0")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	addr := opts.redisAddr
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Fprintf(out, "using miniredis at %s\n", addr)
	} else {
		fmt.Fprintf(out, "using redis at %s\n", addr)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer client.Close()

	authOpts := authtools.DefaultOptions()
	authOpts.AccessTokenSecret = "loadtest-access-secret"
	authOpts.RefreshTokenSecret = "loadtest-refresh-secret"
	authOpts.Hashing.Algorithm = password.AlgorithmBcrypt
	authOpts.Hashing.BcryptCost = 4
	authOpts.Metrics = authtools.MetricsConfig{Enabled: true}

	engine, err := authtools.New().
		WithOptions(authOpts).
		WithLogFunc(nil).
		WithUserStore(memory.NewUsers()).
		WithTokenStore(session.NewStore(client, opts.prefix)).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(out, "seeding %d users...\n", opts.users)
	startSeed := time.Now()
	users := make([]seededUser, opts.users)
	for i := range users {
		name := fmt.Sprintf("user%d", i)
		req := authtools.RegisterRequest{Email: name + "@example.com", Username: name, Password: "Loadtest1!"}
		if resp := engine.Register(ctx, req); !resp.OK() {
			return oops.Code("LOADTEST_SEED_FAILED").With("code", int(resp.Auth.Code)).Errorf("register %s", name)
		}
		resp := engine.Login(ctx, authtools.LoginRequest{Login: name, Password: req.Password})
		if !resp.OK() {
			return oops.Code("LOADTEST_SEED_FAILED").With("code", int(resp.Auth.Code)).Errorf("login %s", name)
		}
		users[i] = seededUser{access: resp.Data.AccessToken, refresh: resp.Data.RefreshToken}
	}
	fmt.Fprintf(out, "seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runPhase(users, opts.ops, opts.concurrency, func(u seededUser) bool {
		return engine.ValidateAccessToken(u.access).Valid
	})
	checkStats := runPhase(users, opts.ops, opts.concurrency, func(u seededUser) bool {
		return engine.Check(ctx, authtools.CheckRequest{AccessToken: u.access, RefreshToken: u.refresh}).OK()
	})
	refreshStats := runPhase(users, opts.ops, opts.concurrency, func(u seededUser) bool {
		return engine.Refresh(ctx, authtools.RefreshRequest{RefreshToken: u.refresh}).OK()
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "validate", validateStats)
	printStats(out, "check", checkStats)
	printStats(out, "refresh", refreshStats)
	return nil
}

func runPhase(users []seededUser, ops, concurrency int, op func(seededUser) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				u := users[r.Intn(len(users))]
				t0 := time.Now()
				ok := op(u)
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

// percentile expects sorted samples.
func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
