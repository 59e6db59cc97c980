package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/time/rate"

	"github.com/kkkkikiki/loyalty/internal/form"
	"github.com/kkkkikiki/loyalty/internal/logging"
	"github.com/kkkkikiki/loyalty/internal/service"
)

// seedConfig controls a seeding run.
type seedConfig struct {
	BaseURL   string        `env:"BASE_URL,default=http://localhost:8080"`
	OwnerID   string        `env:"OWNER_ID"`
	Campaigns int           `env:"CAMPAIGNS,default=3"`
	Clients   int           `env:"CLIENTS,default=50"`
	Visits    int           `env:"VISITS,default=500"`
	Workers   int           `env:"WORKERS,default=10"`
	RPS       int           `env:"RPS,default=100"`
	Timeout   time.Duration `env:"TIMEOUT,default=10s"`
	LogLevel  string        `env:"LOG_LEVEL,default=info"`
}

// seedResult gathers counters for the run. Atomic counters are used to avoid
// lock contention on hot paths.
type seedResult struct {
	Total   int64
	Success int64
	Errors  int64
}

func (r *seedResult) record(err error) {
	atomic.AddInt64(&r.Total, 1)
	if err != nil {
		atomic.AddInt64(&r.Errors, 1)
		slog.Debug("request failed", "code", connect.CodeOf(err).String(), "error", err)
		return
	}
	atomic.AddInt64(&r.Success, 1)
}

var campaignTypes = []string{"sellos", "puntos", "visitas"}

func main() {
	ctx := context.Background()

	var cfg seedConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper("SEED_", envconfig.OsLookuper()),
	}); err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel)
	if cfg.OwnerID == "" {
		cfg.OwnerID = uuid.NewString()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Workers * 4,
			MaxIdleConnsPerHost: cfg.Workers * 4,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: cfg.Timeout,
	}
	client := service.NewLoyaltyServiceClient(httpClient, cfg.BaseURL)

	burst := cfg.RPS / cfg.Workers
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), burst)

	slog.Info("seeding", "base_url", cfg.BaseURL, "owner_id", cfg.OwnerID,
		"campaigns", cfg.Campaigns, "clients", cfg.Clients, "visits", cfg.Visits)
	start := time.Now()

	campaignIDs := createCampaigns(ctx, client, limiter, cfg)
	if len(campaignIDs) == 0 {
		logging.Fatal("no campaign could be created")
	}

	var enrolled seedResult
	clientIDs := runParallel(ctx, limiter, cfg.Workers, cfg.Clients, &enrolled, func(ctx context.Context, i int) (string, error) {
		res, err := client.EnrollClient(ctx, connect.NewRequest(&service.EnrollClientRequest{
			OwnerID: cfg.OwnerID,
			EnrollInput: service.EnrollInput{
				CampaignID: campaignIDs[i%len(campaignIDs)],
				Name:       fmt.Sprintf("Cliente %d", i+1),
				Email:      fmt.Sprintf("cliente%d@example.com", i+1),
			},
		}))
		if err != nil {
			return "", err
		}
		return res.Msg.Client.ID, nil
	})
	if len(clientIDs) == 0 {
		logging.Fatal("no client could be enrolled")
	}

	var visits seedResult
	runParallel(ctx, limiter, cfg.Workers, cfg.Visits, &visits, func(ctx context.Context, i int) (string, error) {
		_, err := client.RecordVisit(ctx, connect.NewRequest(&service.RecordVisitRequest{
			OwnerID:  cfg.OwnerID,
			ClientID: clientIDs[rand.IntN(len(clientIDs))],
			Amount:   1 + rand.IntN(3),
		}))
		return "", err
	})

	elapsed := time.Since(start)
	fmt.Println("==========================================")
	fmt.Println("Seed results")
	fmt.Println("==========================================")
	fmt.Printf("Owner             : %s\n", cfg.OwnerID)
	fmt.Printf("Duration          : %.2fs\n", elapsed.Seconds())
	fmt.Printf("Campaigns created : %d/%d\n", len(campaignIDs), cfg.Campaigns)
	fmt.Printf("Clients enrolled  : %d/%d\n", enrolled.Success, enrolled.Total)
	fmt.Printf("Visits recorded   : %d/%d\n", visits.Success, visits.Total)

	if err := printSummary(ctx, client, cfg); err != nil {
		slog.Error("failed to load summary", "error", err)
	}
	fmt.Println("==========================================")
}

// createCampaigns submits one create form per campaign and returns the ids
// that were saved.
func createCampaigns(ctx context.Context, client *service.LoyaltyServiceClient, limiter *rate.Limiter, cfg seedConfig) []string {
	ids := make([]string, 0, cfg.Campaigns)
	for i := range cfg.Campaigns {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		res, err := client.SubmitCampaignForm(reqCtx, connect.NewRequest(&service.SubmitCampaignFormRequest{
			OwnerID: cfg.OwnerID,
			Edits: []form.Edit{
				{Field: "nombre", Value: fmt.Sprintf("Campaña %d", i+1)},
				{Field: "tipo", Value: campaignTypes[i%len(campaignTypes)]},
				{Field: "objetivo", Value: strconv.Itoa(5 + 5*i)},
				{Field: "recompensa", Value: "Producto gratis"},
			},
		}))
		cancel()
		if err != nil {
			slog.Warn("campaign not created", "code", connect.CodeOf(err).String(), "error", err)
			continue
		}
		ids = append(ids, res.Msg.Result.CampaignID)
	}
	return ids
}

// runParallel calls fn n times over workers goroutines, paced by limiter, and
// returns the non-empty ids fn produced.
func runParallel(ctx context.Context, limiter *rate.Limiter, workers, n int, result *seedResult, fn func(context.Context, int) (string, error)) []string {
	jobs := make(chan int)
	var (
		mu  sync.Mutex
		ids []string
		wg  sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id, err := fn(ctx, i)
				result.record(err)
				if err == nil && id != "" {
					mu.Lock()
					ids = append(ids, id)
					mu.Unlock()
				}
			}
		}()
	}

	for i := range n {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return ids
}

func printSummary(ctx context.Context, client *service.LoyaltyServiceClient, cfg seedConfig) error {
	campaigns, err := client.ListCampaigns(ctx, connect.NewRequest(&service.ListCampaignsRequest{OwnerID: cfg.OwnerID}))
	if err != nil {
		return fmt.Errorf("failed to list campaigns: %w", err)
	}
	s := campaigns.Msg.Summary
	fmt.Printf("Campaigns         : %d total, %d active, %d clients\n", s.Total, s.Active, s.ClientsTotal)

	for _, c := range campaigns.Msg.Campaigns {
		page, err := client.ListClients(ctx, connect.NewRequest(&service.ListClientsRequest{
			OwnerID:    cfg.OwnerID,
			CampaignID: c.ID,
		}))
		if err != nil {
			return fmt.Errorf("failed to list clients of %s: %w", c.ID, err)
		}
		cs := page.Msg.Summary
		fmt.Printf("  %-16s: %s, %d clients, %d active, %d visits\n",
			c.Name, c.ObjectiveLabel, cs.Total, cs.ActiveRecently, cs.TotalVisits)
	}
	return nil
}
