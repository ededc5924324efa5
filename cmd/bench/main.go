package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// benchResult é o relatório final impresso em JSON
type benchResult struct {
	Timestamp        string  `json:"timestamp"`
	BaseURL          string  `json:"base_url"`
	ProductID        string  `json:"product_id"`
	Quantity         int     `json:"quantity_per_checkout"`
	Transactions     int     `json:"transactions"`
	Concurrency      int     `json:"concurrency"`
	Confirmed        int     `json:"confirmed"`
	OutOfStock       int     `json:"out_of_stock"`
	Errors           int     `json:"errors"`
	DurationSeconds  float64 `json:"duration_seconds"`
	ThroughputRPS    float64 `json:"throughput_rps"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	P50LatencyMs     float64 `json:"p50_latency_ms"`
	P95LatencyMs     float64 `json:"p95_latency_ms"`
	P99LatencyMs     float64 `json:"p99_latency_ms"`
	InitialStock     int     `json:"initial_stock"`
	FinalStock       int     `json:"final_stock"`
	ExpectedStock    int     `json:"expected_stock"`
	StockConserved   bool    `json:"stock_conserved"`
	FirstError       string  `json:"first_error,omitempty"`
}

type metrics struct {
	mu          sync.Mutex
	confirmed   int
	outOfStock  int
	errors      int
	latenciesMs []float64
	firstError  string
}

func (m *metrics) record(status int, latency time.Duration, errBody string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latenciesMs = append(m.latenciesMs, float64(latency.Milliseconds()))
	switch {
	case status == 201:
		m.confirmed++
	case status == 409:
		m.outOfStock++
	default:
		m.errors++
		if m.firstError == "" {
			m.firstError = fmt.Sprintf("status %d: %s", status, errBody)
		}
	}
}

func main() {
	baseURL := flag.String("base-url", getEnv("BASE_URL", "http://localhost:8080"), "API base URL")
	productID := flag.String("product", "", "product to buy (default: first product in the catalog)")
	quantity := flag.Int("quantity", 1, "quantity per checkout")
	total := flag.Int("total", 200, "total number of checkouts")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	output := flag.String("output", "", "optional output path for the JSON result")
	flag.Parse()

	if *total <= 0 || *concurrency <= 0 || *quantity <= 0 {
		fmt.Fprintln(os.Stderr, "total, concurrency and quantity must be > 0")
		os.Exit(1)
	}

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(*timeout)

	token, err := createBenchUser(client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create bench user: %v\n", err)
		os.Exit(1)
	}
	client.SetAuthToken(token)

	target, initialStock, err := pickProduct(client, *productID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to pick product: %v\n", err)
		os.Exit(1)
	}

	payload := map[string]any{
		"items": []map[string]any{
			{"product_id": target, "quantity": *quantity},
		},
	}

	tasks := make(chan struct{})
	var wg sync.WaitGroup
	m := &metrics{}

	start := time.Now()
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range tasks {
				began := time.Now()
				resp, err := client.R().
					SetBody(payload).
					Post("/checkout")
				if err != nil {
					m.record(0, time.Since(began), err.Error())
					continue
				}
				m.record(resp.StatusCode(), time.Since(began), string(resp.Body()))
			}
		}()
	}

	for i := 0; i < *total; i++ {
		tasks <- struct{}{}
	}
	close(tasks)
	wg.Wait()
	duration := time.Since(start)

	expectedStock := initialStock - m.confirmed*(*quantity)

	finalStock, err := awaitFinalStock(client, target, expectedStock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read final stock: %v\n", err)
		os.Exit(1)
	}

	p50, p95, p99 := percentiles(m.latenciesMs)

	result := benchResult{
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		BaseURL:          *baseURL,
		ProductID:        target,
		Quantity:         *quantity,
		Transactions:     *total,
		Concurrency:      *concurrency,
		Confirmed:        m.confirmed,
		OutOfStock:       m.outOfStock,
		Errors:           m.errors,
		DurationSeconds:  duration.Seconds(),
		ThroughputRPS:    float64(*total) / duration.Seconds(),
		AvgLatencyMs:     average(m.latenciesMs),
		P50LatencyMs:     p50,
		P95LatencyMs:     p95,
		P99LatencyMs:     p99,
		InitialStock:     initialStock,
		FinalStock:       finalStock,
		ExpectedStock:    expectedStock,
		StockConserved:   finalStock == expectedStock,
		FirstError:       m.firstError,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		data, _ := json.MarshalIndent(result, "", "  ")
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
			os.Exit(1)
		}
	}

	if !result.StockConserved {
		fmt.Fprintf(os.Stderr, "stock conservation violated: expected %d, got %d\n", expectedStock, finalStock)
		os.Exit(1)
	}
}

// awaitFinalStock lê o estoque final do produto alvo. A vitrine serve
// valores de um cache com TTL de até ~40s, então a leitura é repetida até
// o valor esperado aparecer ou o cache expirar.
func awaitFinalStock(client *resty.Client, productID string, expected int) (int, error) {
	deadline := time.Now().Add(60 * time.Second)
	last := 0
	for {
		_, stock, err := pickProduct(client, productID)
		if err != nil {
			return 0, err
		}
		last = stock
		if stock == expected || time.Now().After(deadline) {
			return last, nil
		}
		time.Sleep(2 * time.Second)
	}
}

// createBenchUser registra um usuário descartável e retorna a credencial
func createBenchUser(client *resty.Client) (string, error) {
	email := fmt.Sprintf("bench-%s@example.com", uuid.New().String())
	password := uuid.New().String()

	resp, err := client.R().
		SetBody(map[string]string{
			"name":     "Bench Runner",
			"email":    email,
			"password": password,
		}).
		Post("/signup")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 201 {
		return "", fmt.Errorf("signup failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var loginBody struct {
		Token string `json:"token"`
	}
	resp, err = client.R().
		SetBody(map[string]string{
			"email":    email,
			"password": password,
		}).
		SetResult(&loginBody).
		Post("/login")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 || loginBody.Token == "" {
		return "", fmt.Errorf("login failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	return loginBody.Token, nil
}

// pickProduct resolve o produto alvo e retorna seu estoque atual
func pickProduct(client *resty.Client, productID string) (string, int, error) {
	type product struct {
		ID    string `json:"id"`
		Stock int    `json:"stock"`
	}

	if productID != "" {
		var p product
		resp, err := client.R().
			SetResult(&p).
			Get("/products/" + productID)
		if err != nil {
			return "", 0, err
		}
		if resp.StatusCode() != 200 {
			return "", 0, fmt.Errorf("product lookup failed with status %d: %s", resp.StatusCode(), resp.Body())
		}
		return p.ID, p.Stock, nil
	}

	var products []product
	resp, err := client.R().
		SetResult(&products).
		Get("/products")
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode() != 200 {
		return "", 0, fmt.Errorf("catalog listing failed with status %d: %s", resp.StatusCode(), resp.Body())
	}
	if len(products) == 0 {
		return "", 0, fmt.Errorf("catalog is empty")
	}

	return products[0].ID, products[0].Stock, nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func percentiles(values []float64) (float64, float64, float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.50), percentile(sorted, 0.95), percentile(sorted, 0.99)
}

func percentile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
