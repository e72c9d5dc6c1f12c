// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rfp-workers/internal/catalog"
	awsclients "rfp-workers/internal/common/aws"
	"rfp-workers/internal/common/config"
	"rfp-workers/internal/common/database"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/common/observability"
	"rfp-workers/pkg/pricebook"

	// Extraction Worker (1)
	xr "rfp-workers/internal/workers/extraction/extract-requirements"

	// Data Access Workers (2)
	qc "rfp-workers/internal/workers/data-access/query-catalog"
	sc "rfp-workers/internal/workers/data-access/search-catalog"

	// Technical Evaluation Workers (2)
	ew "rfp-workers/internal/workers/technical/estimate-win"
	mp "rfp-workers/internal/workers/technical/match-products"

	// Pricing & Sales Workers (2)
	pb "rfp-workers/internal/workers/pricing/price-bid"
	gb "rfp-workers/internal/workers/sales/generate-bid"

	// Communication Workers (2)
	es "rfp-workers/internal/workers/communication/email-send"
	ns "rfp-workers/internal/workers/communication/notify-status"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// timeoutOrDefault converts a worker's configured timeout (milliseconds) to a
// duration, keeping the package default when the config leaves it unset.
func timeoutOrDefault(wcfg config.WorkerConfig, fallback time.Duration) time.Duration {
	if wcfg.Timeout > 0 {
		return time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return fallback
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Domain Services ---
	repo := catalog.NewRepository(pg, redis, time.Duration(cfg.Database.Redis.CacheTTL)*time.Second, log)

	book := pricebook.NewStandard(cfg.Pricing.DefaultUnitPrice, cfg.Pricing.DefaultTestPrice)
	for _, path := range []string{cfg.Pricing.PriceBookPath, cfg.Pricing.TestPriceBookPath} {
		if path == "" {
			continue
		}
		if err := book.Load(path); err != nil {
			zapLog.Warn("price book load failed, using defaults", zap.String("path", path), zap.Error(err))
		}
	}

	// --- Init AWS Clients (optional) ---
	mailers := []es.Mailer{}
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := awsclients.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client initialization failed, falling back to simulated mailer", zap.Error(err))
		} else {
			mailers = append(mailers, es.NewSESMailer(sesClient))
			zapLog.Info("SES client initialized", zap.String("region", cfg.Integrations.AWS.Region))
		}
	}
	mailers = append(mailers, es.NewSimulatedMailer(log))

	var snsClient ns.SNSService
	if cfg.Integrations.AWS.SNS.Enabled {
		client, err := awsclients.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client initialization failed, status notifications disabled", zap.Error(err))
		} else {
			snsClient = client
			zapLog.Info("SNS client initialized", zap.String("topicArn", cfg.Integrations.AWS.SNS.TopicARN))
		}
	}

	// --- Register Workers ---

	// --- 1. Extraction Worker ---
	if cfg.Workers[xr.TaskType].Enabled {
		xrCfg := xr.LoadConfig()
		xrCfg.Timeout = timeoutOrDefault(cfg.Workers[xr.TaskType], xrCfg.Timeout)
		if cfg.LLM.Primary.Name != "" {
			xrCfg.Primary = providerConfig(cfg.LLM.Primary)
		}
		if cfg.LLM.Fallback.Name != "" {
			xrCfg.Fallback = providerConfig(cfg.LLM.Fallback)
		}
		llmService := xr.NewLLMService(xrCfg, log)
		handler := xr.NewHandler(xrCfg, llmService, repo, log)
		startWorker(zeebeClient, xr.TaskType, cfg.Workers[xr.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Data Access Workers ---
	if cfg.Workers[qc.TaskType].Enabled {
		qcCfg := qc.LoadConfig()
		qcCfg.Timeout = timeoutOrDefault(cfg.Workers[qc.TaskType], qcCfg.Timeout)
		handler := qc.NewHandler(qcCfg, pg.GetDB(), log)
		startWorker(zeebeClient, qc.TaskType, cfg.Workers[qc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sc.TaskType].Enabled {
		scCfg := sc.LoadConfig()
		scCfg.Timeout = timeoutOrDefault(cfg.Workers[sc.TaskType], scCfg.Timeout)
		if cfg.Database.Elasticsearch.CatalogIndex != "" {
			scCfg.DefaultIndex = cfg.Database.Elasticsearch.CatalogIndex
		}
		handler := sc.NewHandler(scCfg, esClient.Client, log)
		startWorker(zeebeClient, sc.TaskType, cfg.Workers[sc.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Technical Evaluation Workers ---
	if cfg.Workers[mp.TaskType].Enabled {
		mpCfg := mp.LoadConfig()
		mpCfg.Timeout = timeoutOrDefault(cfg.Workers[mp.TaskType], mpCfg.Timeout)
		handler := mp.NewHandler(mpCfg, repo, log)
		startWorker(zeebeClient, mp.TaskType, cfg.Workers[mp.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ew.TaskType].Enabled {
		ewCfg := ew.LoadConfig()
		ewCfg.Timeout = timeoutOrDefault(cfg.Workers[ew.TaskType], ewCfg.Timeout)
		handler := ew.NewHandler(ewCfg, log)
		startWorker(zeebeClient, ew.TaskType, cfg.Workers[ew.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Pricing & Sales Workers ---
	if cfg.Workers[pb.TaskType].Enabled {
		pbCfg := pb.LoadConfig()
		pbCfg.Timeout = timeoutOrDefault(cfg.Workers[pb.TaskType], pbCfg.Timeout)
		if cfg.Pricing.DefaultQuantity > 0 {
			pbCfg.DefaultQuantity = cfg.Pricing.DefaultQuantity
		}
		if cfg.Pricing.ContingencyRate > 0 {
			pbCfg.ContingencyRate = cfg.Pricing.ContingencyRate
		}
		handler := pb.NewHandler(pbCfg, repo, book, log)
		startWorker(zeebeClient, pb.TaskType, cfg.Workers[pb.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gb.TaskType].Enabled {
		gbCfg := gb.LoadConfig()
		gbCfg.Timeout = timeoutOrDefault(cfg.Workers[gb.TaskType], gbCfg.Timeout)
		if cfg.Integrations.AWS.SES.FromEmail != "" {
			gbCfg.ContactEmail = cfg.Integrations.AWS.SES.FromEmail
		}
		handler := gb.NewHandler(gbCfg, repo, log)
		startWorker(zeebeClient, gb.TaskType, cfg.Workers[gb.TaskType], handler.Handle, zapLog)
	}

	// --- 5. Communication Workers ---
	if cfg.Workers[es.TaskType].Enabled {
		esCfg := es.DefaultConfig()
		esCfg.Timeout = timeoutOrDefault(cfg.Workers[es.TaskType], esCfg.Timeout)
		esCfg.SESEnabled = cfg.Integrations.AWS.SES.Enabled
		esCfg.Region = cfg.Integrations.AWS.Region
		if cfg.Integrations.AWS.SES.FromEmail != "" {
			esCfg.DefaultFrom = cfg.Integrations.AWS.SES.FromEmail
		}
		if err := esCfg.Validate(); err != nil {
			zapLog.Fatal("email-send config invalid", zap.Error(err))
		}
		service := es.NewService(esCfg, mailers, log)
		handler := es.NewHandler(esCfg, service, repo, log)
		startWorker(zeebeClient, es.TaskType, cfg.Workers[es.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ns.TaskType].Enabled {
		nsCfg := ns.LoadConfig()
		nsCfg.Timeout = timeoutOrDefault(cfg.Workers[ns.TaskType], nsCfg.Timeout)
		nsCfg.SNSEnabled = cfg.Integrations.AWS.SNS.Enabled && snsClient != nil
		nsCfg.TopicARN = cfg.Integrations.AWS.SNS.TopicARN
		nsCfg.AWSRegion = cfg.Integrations.AWS.Region
		handler := ns.NewHandler(nsCfg, repo, snsClient, log)
		startWorker(zeebeClient, ns.TaskType, cfg.Workers[ns.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func providerConfig(p config.LLMProviderConfig) xr.ProviderConfig {
	return xr.ProviderConfig{
		Name:    p.Name,
		BaseURL: p.BaseURL,
		APIKey:  p.APIKey,
		Model:   p.Model,
		Timeout: time.Duration(p.Timeout) * time.Millisecond,
	}
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
