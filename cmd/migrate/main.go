// Command migrate applies pending structural changes to the shared schema
// and every migratable tenant schema, then prints the run summary. Exit code
// 1 means the shared-store step failed and the run was aborted; exit code 2
// means one or more tenant schemas failed and should be investigated before
// the next run retries them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/config"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository/postgres"
	"github.com/donolu/enterprise-grc-system-sub000/internal/service"
	"github.com/donolu/enterprise-grc-system-sub000/pkg/logger"
	"github.com/donolu/enterprise-grc-system-sub000/pkg/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(os.Getenv("LOG_LEVEL"), "console", "grc-migrate")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	var notifier service.ReportNotifier
	if cfg.Email.Enabled {
		n, err := notify.NewResendNotifier(&notify.Config{
			APIKey:    cfg.Email.APIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			OpsEmail:  cfg.Email.OpsEmail,
		})
		if err != nil {
			zapLogger.Warn("migration report mailer disabled", zap.Error(err))
		} else {
			notifier = n
		}
	}

	tenantRepo := postgres.NewTenantRepository(db)
	schemaManager := postgres.NewSchemaManager(db)
	migrator := service.NewMigratorService(tenantRepo, schemaManager, notifier, zapLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	summary, err := migrator.RunPending(ctx)
	if err != nil {
		zapLogger.Error("migration run aborted", zap.Error(err))
		os.Exit(1)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		zapLogger.Fatal("failed to encode summary", zap.Error(err))
	}
	fmt.Println(string(out))

	if summary.Failed > 0 {
		os.Exit(2)
	}
}
