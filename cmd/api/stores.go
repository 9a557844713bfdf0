package main

import (
	"context"
	"fmt"

	"eclinic/cmd/internal/config"
	"eclinic/cmd/internal/domain/cache"
	"eclinic/cmd/internal/domain/dynamo"
	"eclinic/cmd/internal/domain/sqlite"
	"eclinic/cmd/internal/domain/sqlite/repository"
	"eclinic/cmd/internal/integration/aws/cognito"
	authmw "eclinic/cmd/internal/middleware"
	"eclinic/cmd/internal/service"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

type stores struct {
	profiles     service.ProfileRepository
	appointments service.AppointmentRepository
	closers      []func() error
}

func (s *stores) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Warnf("failed to close store: %v", err)
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		client, err := newDynamoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		st.profiles = dynamo.NewProfileStore(client, cfg.DynamoDBTable)
		st.appointments = dynamo.NewAppointmentStore(client, cfg.DynamoDBTable)
	default:
		db, err := sqlite.Init(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, sqlDB.Close)
		st.profiles = repository.NewProfileRepository(db)
		st.appointments = repository.NewAppointmentRepository(db)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warnf("redis at %s is not reachable, profile reads will fall through: %v", opts.Addr, err)
		}
		st.closers = append(st.closers, client.Close)
		st.profiles = cache.NewProfileCache(st.profiles, client, cfg.ProfileCacheTTL)
	}
	return st, nil
}

func newDynamoClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	}), nil
}

func newTokenResolver(ctx context.Context, cfg *config.Config) (authmw.TokenResolver, error) {
	if cfg.AuthMode == config.AuthModeCognito {
		client, err := cognito.InitCognitoClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cognito client: %w", err)
		}
		return authmw.NewCognitoResolver(client), nil
	}
	return authmw.NewJWTResolver(cfg.JWTSecret), nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreBackend == config.BackendDynamoDB {
		client, err := newDynamoClient(ctx, cfg)
		if err != nil {
			return err
		}
		return dynamo.EnsureTable(ctx, client, cfg.DynamoDBTable)
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	if err := sqlite.Migrate(db); err != nil {
		return err
	}
	log.Infof("sqlite schema at %s is up to date", cfg.SQLitePath)
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
