// loadgen fires synthetic contract interactions at a running API server and
// reports throughput and latency percentiles. It exists to size the admission
// gate and ledger budget under contention before a campaign goes live.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
)

const defaultBaseURL = "http://localhost:8080"

type Config struct {
	BaseURL         string
	APIKey          string
	ContractAddress string
	EventName       string
	Requests        int
	Concurrency     int
	Timeout         time.Duration
}

type result struct {
	status  int
	latency time.Duration
	err     error
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, finishing in-flight requests...")
		cancel()
	}()

	client := &http.Client{Timeout: cfg.Timeout}
	pool := pond.NewPool(cfg.Concurrency)

	var (
		mu      sync.Mutex
		results []result
		sent    atomic.Int64
	)

	start := time.Now()
	for i := 0; i < cfg.Requests; i++ {
		if ctx.Err() != nil {
			break
		}
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			r := fire(ctx, client, cfg)
			sent.Add(1)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}
	pool.StopAndWait()
	elapsed := time.Since(start)

	report(results, sent.Load(), elapsed)
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "url", defaultBaseURL, "API server base URL")
	flag.StringVar(&cfg.APIKey, "api-key", "", "API key for the interaction endpoints")
	flag.StringVar(&cfg.ContractAddress, "contract", "", "contract address the target airdrop watches (required)")
	flag.StringVar(&cfg.EventName, "event", "Transfer", "event name to submit")
	flag.IntVar(&cfg.Requests, "n", 100, "total number of interactions to submit")
	flag.IntVar(&cfg.Concurrency, "c", 10, "number of concurrent workers")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	if cfg.ContractAddress == "" {
		fmt.Fprintln(os.Stderr, "missing required -contract flag")
		flag.Usage()
		os.Exit(2)
	}
	return cfg
}

// fire submits one interaction from a fresh random wallet so every request
// exercises the lazy user creation path
func fire(ctx context.Context, client *http.Client, cfg Config) result {
	payload, err := json.Marshal(map[string]any{
		"contract_address": cfg.ContractAddress,
		"user_address":     randomAddress(),
		"event_name":       cfg.EventName,
		"tx_hash":          "0x" + randomHex(32),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return result{err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.BaseURL+"/api/v1/interactions/contract", bytes.NewReader(payload))
	if err != nil {
		return result{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "apikey "+cfg.APIKey)
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return result{latency: latency, err: err}
	}
	defer resp.Body.Close()

	return result{status: resp.StatusCode, latency: latency}
}

func report(results []result, sent int64, elapsed time.Duration) {
	statuses := make(map[int]int)
	var errs int
	latencies := make([]time.Duration, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			errs++
			continue
		}
		statuses[r.status]++
		latencies = append(latencies, r.latency)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Printf("\nSubmitted %d interactions in %s (%.1f req/s)\n",
		sent, elapsed.Round(time.Millisecond), float64(sent)/elapsed.Seconds())
	for status, count := range statuses {
		fmt.Printf("  HTTP %d: %d\n", status, count)
	}
	if errs > 0 {
		fmt.Printf("  errors: %d\n", errs)
	}
	if len(latencies) > 0 {
		fmt.Printf("  latency p50=%s p90=%s p99=%s max=%s\n",
			percentile(latencies, 0.50), percentile(latencies, 0.90),
			percentile(latencies, 0.99), latencies[len(latencies)-1])
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func randomAddress() string {
	return "0x" + randomHex(20)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
