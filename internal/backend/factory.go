package backend

import (
	"context"
	"fmt"
	"time"

	"finman/internal/amqp"
	"finman/internal/log"
	"finman/internal/services"
	"finman/internal/storage"
	"finman/internal/store"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	persister, err := f.createPersister(config)
	if err != nil {
		return nil, err
	}

	// Event publishing is optional; a broker outage never blocks the ledger.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	st := store.New(persister, store.WithClock(f.now), store.WithLogger(f.logger))
	svc := services.NewLedgerService(st, publisher, f.logger)

	f.logger.InfoContext(ctx, "Initialized ledger backend",
		log.FieldBackend, config.Type.String(),
		"events_enabled", publisher != nil)

	return &BackendResult{
		Service:   svc,
		Persister: persister,
		Cleanup:   svc.Close,
	}, nil
}

func (f *DefaultFactory) createPersister(config Config) (store.Persister, error) {
	switch config.Type {
	case JSONBackend:
		f.logger.Debug("Using JSON file backend", log.FieldSource, config.DataFile)
		return storage.NewFileRepository(config.DataFile), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Debug("Using SQLite backend", log.FieldSource, config.SQLiteDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

var _ Factory = (*DefaultFactory)(nil)
