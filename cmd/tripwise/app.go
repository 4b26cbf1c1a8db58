package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/tripwise-agent/internal/adapters/events"
	"github.com/PabloGalante/tripwise-agent/internal/adapters/inventory"
	"github.com/PabloGalante/tripwise-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/tripwise-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/tripwise-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/tripwise-agent/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/tripwise-agent/internal/app/conversation"
	"github.com/PabloGalante/tripwise-agent/internal/app/history"
	"github.com/PabloGalante/tripwise-agent/internal/app/planner"
	"github.com/PabloGalante/tripwise-agent/internal/config"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

// application holds the wired services shared by every command.
type application struct {
	conversation *conversation.Service
	history      *history.Service
	planner      *planner.TravelPlanner
	closers      []func() error
}

func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func buildApp(ctx context.Context, cfg *config.Config) (*application, error) {
	log := observability.Logger()
	app := &application{}

	var oracle domain.TextOracle
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		oracle = llm.NewMockLLM()
	} else {
		log.Info("using Vertex LLM client", "model", cfg.ModelName, "location", cfg.GCPLocation)
		client, err := llm.NewVertexClient(ctx, llm.VertexConfig{
			Project:   cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing Vertex LLM client: %w", err)
		}
		oracle = client
	}

	hotels, err := inventory.NewHotelCatalog(cfg.Inventory.PriceJitter)
	if err != nil {
		return nil, err
	}

	policy, err := planner.ParseBookingPolicy(cfg.Planner.BookingPolicy)
	if err != nil {
		return nil, err
	}
	app.planner = planner.New(inventory.NewFlightCatalog(), hotels, oracle, planner.Options{
		HomeCity:      cfg.Planner.HomeCity,
		LeadDays:      cfg.Planner.LeadDays,
		BookingPolicy: policy,
		OracleTimeout: cfg.Planner.OracleTimeout,
	})
	log.Info("planner configured", "home_city", cfg.Planner.HomeCity, "booking_policy", app.planner.Policy())

	stores, err := openStores(ctx, cfg, app)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	bus := events.NewBus(log)
	app.closers = append(app.closers, bus.Close)
	if err := bus.LogEvents(ctx, domain.EventTripPlanned, domain.EventTripBooked); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.conversation = conversation.NewService(
		conversation.NewMachine(oracle, cfg.Planner.OracleTimeout),
		app.planner,
		stores,
		bus,
	)
	app.history = history.NewService(stores.Plans, stores.Bookings)
	return app, nil
}

func openStores(ctx context.Context, cfg *config.Config, app *application) (conversation.Stores, error) {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return conversation.Stores{}, fmt.Errorf("error initializing Firestore store: %w", err)
		}
		app.closers = append(app.closers, fsStore.Close)
		// 1 store, implements all 4 interfaces
		return conversation.Stores{Sessions: fsStore, Messages: fsStore, Plans: fsStore, Bookings: fsStore}, nil

	case "sqlite":
		log.Info("using SQLite storage", "path", cfg.SQLitePath)
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return conversation.Stores{}, fmt.Errorf("error opening SQLite store: %w", err)
		}
		store := sqlitestore.NewStore(db)
		app.closers = append(app.closers, store.Close)
		return conversation.Stores{Sessions: store, Messages: store, Plans: store, Bookings: store}, nil

	default:
		log.Info("using in-memory storage")
		return conversation.Stores{
			Sessions: memstore.NewSessionStore(),
			Messages: memstore.NewMessageStore(),
			Plans:    memstore.NewPlanStore(),
			Bookings: memstore.NewBookingStore(),
		}, nil
	}
}
