// Package main provides a CLI tool for preparing the database: it runs
// the schema migration and, when SEED_DEMO_DATA=true, loads demo
// branches, products, stock, and customers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain"
	"granel/internal/domain/catalogs/branch"
	"granel/internal/domain/catalogs/customer"
	"granel/internal/domain/catalogs/product"
	"granel/internal/domain/pricing"
	"granel/internal/domain/registers/inventory"
	"granel/internal/infrastructure/storage/postgres"
	"granel/internal/infrastructure/storage/postgres/catalog_repo"
	"granel/internal/infrastructure/storage/postgres/register_repo"
	"granel/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}
	log.Info("schema is up to date")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
		log.Info("demo data seeded")
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)

	branchRepo := catalog_repo.NewBranchRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	inventoryRepo := register_repo.NewInventoryRepo(txManager)

	branchSvc := branch.NewService(branchRepo)
	inventorySvc := inventory.NewService(inventoryRepo)
	customerSvc := customer.NewService(customerRepo)
	productSvc := product.NewService(productRepo, branchSvc, inventorySvc, txManager)

	existing, err := branchSvc.List(ctx, domain.DefaultListFilter())
	if err != nil {
		return fmt.Errorf("check branches: %w", err)
	}
	if existing.TotalCount > 0 {
		log.Infow("demo data already present, skipping", "branches", existing.TotalCount)
		return nil
	}

	branches := []*branch.Branch{
		branch.New("Centro"),
		branch.New("Norte"),
	}
	branches[0].Address = "Av. San Martin 120"
	branches[0].Phone = "+54 11 4000-1001"
	branches[1].Address = "Ruta 8 km 42"
	branches[1].Phone = "+54 11 4000-1002"

	for _, b := range branches {
		if err := branchSvc.Create(ctx, b); err != nil {
			return fmt.Errorf("create branch %q: %w", b.Name, err)
		}
	}
	log.Infow("seeded branches", "count", len(branches))

	products := demoProducts()
	for _, p := range products {
		if err := productSvc.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %q: %w", p.Name, err)
		}
	}
	log.Infow("seeded products", "count", len(products))

	// Opening stock per branch, recorded as adjustments.
	openingQty := types.NewQuantityFromFloat64(200)
	for _, b := range branches {
		for _, p := range products {
			adjID := id.New()
			if err := inventorySvc.SetQuantity(ctx, "Adjustment", adjID, p.ID, b.ID, openingQty); err != nil {
				return fmt.Errorf("opening stock for %q at %q: %w", p.Name, b.Name, err)
			}
		}
	}
	log.Info("seeded opening stock")

	customers := demoCustomers(branches[0].ID, branches[1].ID)
	for _, c := range customers {
		if err := customerSvc.Create(ctx, c); err != nil {
			return fmt.Errorf("create customer %q: %w", c.Name, err)
		}
	}
	log.Infow("seeded customers", "count", len(customers))

	return nil
}

func demoProducts() []*product.Product {
	det := product.New("Detergente concentrado", pricing.CategoryLiquid, types.NewMoney(300))
	det.PriceWholesale = types.NewMoney(250)
	det.Description = "Per liter, wholesale from 5L"

	lav := product.New("Lavandina", pricing.CategoryLiquid, types.NewMoney(180))
	lav.PriceWholesale = types.NewMoney(150)

	suav := product.New("Suavizante", pricing.CategoryLiquid, types.NewMoney(220))
	suav.PriceWholesale = types.NewMoney(190)

	esponja := product.New("Esponja multiuso", pricing.CategoryDryGoods, types.NewMoney(90))
	trapo := product.New("Trapo de piso", pricing.CategoryDryGoods, types.NewMoney(150))
	arroz := product.New("Arroz suelto", pricing.CategoryBulkFood, types.NewMoney(120))

	return []*product.Product{det, lav, suav, esponja, trapo, arroz}
}

func demoCustomers(centroID, norteID id.ID) []*customer.Customer {
	c1 := customer.New("Lavadero El Rapido")
	c1.Phone = "+54 11 5555-2001"
	c1.Address = "Belgrano 455"
	c1.BranchID = &centroID

	c2 := customer.New("Hotel Mirador")
	c2.Phone = "+54 11 5555-2002"
	c2.BranchID = &norteID

	c3 := customer.New("Consumidor final")

	return []*customer.Customer{c1, c2, c3}
}
