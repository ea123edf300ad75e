package main

// POST /products – Create a new product in the store.
// GET /products/list -  For listing products (filter=all|active|available|cart)
// GET /products/total - Total stock in the store
// POST /promotions - Create a named promotion
// GET /cart/list - For listing cart products
// POST /cart/add - To add product in cart
// POST /cart/clear - To empty the cart
// POST /checkout/order - For a checkout

import (
	"context"
	"errors"
	"log"
	"net/http"

	"retail-inventory/config"
	"retail-inventory/handler"
	"retail-inventory/journal"
	models "retail-inventory/model"
	"retail-inventory/service"
	"retail-inventory/store"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config failed: %v", err)
	}

	// --- Logger ---
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Logger failed: %v", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service", config.ServiceName), zap.String("version", config.ServiceVersion))

	// --- Journals ---
	journals, closeJournals := openJournals(cfg, logger)
	defer closeJournals()

	// --- Store ---
	promotions, products, err := seedCatalog()
	if err != nil {
		logger.Fatal("Seeding catalog failed", zap.Error(err))
	}
	st, err := store.NewMemoryStore(products,
		store.WithLogger(logger.Named("store")),
		store.WithStrictContracts(cfg.StrictContracts),
	)
	if err != nil {
		logger.Fatal("Creating store failed", zap.Error(err))
	}

	// --- Service ---
	svc := service.NewService(st, journals, logger.Named("service"))
	for _, p := range promotions {
		if err := svc.RegisterPromotion(p); err != nil {
			logger.Fatal("Registering promotion failed", zap.Error(err))
		}
	}
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	h := handler.NewHandler(serviceInterface)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	logger.Info("Server running", zap.String("addr", cfg.HTTPAddr), zap.Int("products", len(products)))

	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

// openJournals enables the Postgres and Kafka journals that are configured.
func openJournals(cfg *config.Config, logger *zap.Logger) (journal.Journal, func()) {
	var (
		journals journal.Multi
		closers  []func() error
	)

	if cfg.DatabaseURL != "" {
		pg, err := journal.NewPostgresJournal(cfg.DatabaseURL, logger.Named("journal.postgres"))
		if err != nil {
			logger.Fatal("DB connection failed", zap.Error(err))
		}
		if err := pg.Migrate(context.Background()); err != nil {
			logger.Fatal("Failed running migrations", zap.Error(err))
		}
		logger.Info("Database migrations executed successfully")
		journals = append(journals, pg)
		closers = append(closers, pg.Close)
	}

	if cfg.KafkaBroker != "" {
		kj := journal.NewKafkaJournal(cfg.KafkaBroker, cfg.OrdersTopic, logger.Named("journal.kafka"))
		journals = append(journals, kj)
		closers = append(closers, kj.Close)
	}

	return journals, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Closing journal failed", zap.Error(err))
			}
		}
	}
}

func seedCatalog() ([]models.Promotion, []*models.Product, error) {
	buyTwoGetOne, err := models.NewEveryXFree("Buy two, get one free", 3)
	if err != nil {
		return nil, nil, err
	}
	twentyOff, err := models.NewPercentDiscount("20% off", 20)
	if err != nil {
		return nil, nil, err
	}
	thirtyOff, err := models.NewPercentDiscount("30% off", 30)
	if err != nil {
		return nil, nil, err
	}
	everySecond, err := models.NewEveryXDiscounted("Every 2nd 20%", 2, 20)
	if err != nil {
		return nil, nil, err
	}
	free, err := models.NewPercentDiscount("Currently free!", 100)
	if err != nil {
		return nil, nil, err
	}
	promotions := []models.Promotion{buyTwoGetOne, twentyOff, thirtyOff, everySecond, free}

	var errs []error
	check := func(p *models.Product, err error) *models.Product {
		errs = append(errs, err)
		return p
	}
	products := []*models.Product{
		check(models.NewProduct("MacBook Air M2", decimal.NewFromInt(1450), 100)),
		check(models.NewProduct("Bose QuietComfort Earbuds", decimal.NewFromInt(250), 500,
			models.WithPromotion(buyTwoGetOne))),
		check(models.NewProduct("Google Pixel 7", decimal.NewFromInt(500), 250,
			models.WithPromotion(everySecond))),
		check(models.NewUnlimitedProduct("Windows License", decimal.NewFromInt(125),
			models.WithPromotion(thirtyOff))),
		check(models.NewCappedProduct("Shipping", decimal.NewFromInt(10), 1000, 1,
			models.WithPromotion(free))),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	return promotions, products, nil
}
