package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/zhouzirui/digital-twin/backend/internal/config"
)

// Open builds the backend selected by cfg. The returned cleanup func releases
// any pooled resources and is never nil.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocalStore(cfg.MemoryDir), noop, nil
	case config.BackendMemory:
		return NewMemoryStore(), noop, nil
	case config.BackendS3:
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return NewS3Store(client, cfg.Bucket, cfg.Region), noop, nil
	case config.BackendSQLite, config.BackendPostgres, config.BackendMySQL:
		db, err := openDB(cfg)
		if err != nil {
			return nil, noop, err
		}
		store, err := NewSQLStore(db, Dialect(cfg.Backend))
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return store, db.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3ForcePathStyle
	}), nil
}

func openDB(cfg config.StorageConfig) (*sql.DB, error) {
	driver, dsn := cfg.Backend, cfg.DatabaseDSN
	if cfg.Backend == config.BackendSQLite {
		if dir := filepath.Dir(sqliteFilePath(dsn)); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}

// sqliteFilePath strips the "file:" scheme and query options from a sqlite DSN.
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	return path
}
