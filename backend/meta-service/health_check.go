package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/joho/godotenv"
)

const (
	defaultPort    = "8081"
	defaultTargets = "http://localhost:8082/health"
	probeTimeout   = 2 * time.Second
)

type targetStatus struct {
	URL     string `json:"url"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type aggregateHealth struct {
	Status  string         `json:"status"`
	Targets []targetStatus `json:"targets"`
}

func main() {
	_ = godotenv.Load()
	utils.InitLogger("meta-service")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = defaultPort
	}
	targets := splitTargets(os.Getenv("HEALTH_TARGETS"))
	if len(targets) == 0 {
		targets = splitTargets(defaultTargets)
	}

	http.HandleFunc("/health", healthHandler(&http.Client{Timeout: probeTimeout}, targets))
	utils.Logger.Infof("Starting health check service on port %s for %d target(s)", port, len(targets))
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		utils.Logger.Fatal("meta-service failed to start:", err)
	}
}

// healthHandler probes every target concurrently and reports 200 only when
// all of them answer 200.
func healthHandler(client *http.Client, targets []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := make([]targetStatus, len(targets))

		var wg sync.WaitGroup
		for i, u := range targets {
			wg.Add(1)
			go func(i int, u string) {
				defer wg.Done()
				results[i] = probe(r.Context(), client, u)
			}(i, u)
		}
		wg.Wait()

		resp := aggregateHealth{Status: "OK", Targets: results}
		status := http.StatusOK
		for _, res := range results {
			if !res.Healthy {
				utils.Logger.Warnf("[meta-service] Service unhealthy: %s (%s)", res.URL, res.Error)
				resp.Status = "UNHEALTHY"
				status = http.StatusServiceUnavailable
			}
		}
		utils.RespondWithJSON(w, status, resp)
	}
}

func probe(ctx context.Context, client *http.Client, u string) targetStatus {
	res := targetStatus{URL: u}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	resp, err := client.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		res.Error = http.StatusText(resp.StatusCode)
		return res
	}
	res.Healthy = true
	return res
}

func splitTargets(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
