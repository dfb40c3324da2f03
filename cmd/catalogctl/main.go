// Command catalogctl operates on a product catalog slot from the shell:
// listing with filters and sorting, mutating products, and tailing live
// changes made by other instances sharing the same slot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"catalogcore/internal/config"
	"catalogcore/internal/core"
	"catalogcore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "list":
		err = runList(ctx, cfg, logger, args[1:])
	case "add":
		err = runAdd(ctx, cfg, logger, args[1:])
	case "update":
		err = runUpdate(ctx, cfg, logger, args[1:])
	case "delete":
		err = runDelete(ctx, cfg, logger, args[1:])
	case "watch":
		err = runWatch(ctx, cfg, logger, args[1:])
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "catalogctl: unknown command %q\n", args[0])
		usage()
		return 2
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		logger.Error("command failed", "command", args[0], "error", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: catalogctl <command> [flags]

commands:
  list     print the catalog, optionally filtered and sorted
  add      create a product
  update   replace a product by id
  delete   remove a product by id
  watch    follow catalog changes until interrupted

Configuration comes from the TOML file named by CATALOGCORE_CONFIG and
CATALOGCORE_* environment variables.
`)
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*core.ProductStore, func(), error) {
	storage, err := core.OpenSlotStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	categories := core.NewCategoryStore()
	store, err := core.NewProductStore(ctx, storage, categories, core.StoreOptions{
		SlotName: cfg.SlotName,
		Logger:   logger,
	})
	if err != nil {
		storage.Close()
		return nil, nil, fmt.Errorf("open product store: %w", err)
	}
	cleanup := func() {
		store.Close()
		categories.Close()
		storage.Close()
	}
	return store, cleanup, nil
}

func runList(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	name := fs.String("name", "", "case-insensitive name substring")
	categoryIDs := fs.String("categories", "", "comma-separated category ids")
	lower := fs.Float64("min-price", 0, "lower price bound (0 disables)")
	upper := fs.Float64("max-price", 0, "upper price bound (0 disables)")
	stock := fs.String("stock", "any", "any|in|out")
	minRating := fs.Float64("min-rating", 0, "minimum rating (0 disables)")
	sortBy := fs.String("sort", "", "id|name|price|category|stock|rating")
	desc := fs.Bool("desc", false, "sort descending")
	asJSON := fs.Bool("json", false, "emit JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	criteria := domain.FilterCriteria{
		Name:       *name,
		LowerPrice: *lower,
		UpperPrice: *upper,
		MinRating:  *minRating,
	}
	switch *stock {
	case "", "any":
	case "in":
		criteria.Stock = domain.StockInStock
	case "out":
		criteria.Stock = domain.StockOutOfStock
	default:
		return fmt.Errorf("unknown stock filter %q", *stock)
	}
	if *categoryIDs != "" {
		for _, field := range strings.Split(*categoryIDs, ",") {
			var id int64
			if _, err := fmt.Sscanf(strings.TrimSpace(field), "%d", &id); err != nil {
				return fmt.Errorf("bad category id %q", field)
			}
			criteria.Categories = append(criteria.Categories, domain.Category{ID: id})
		}
	}

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	products := domain.FilterProducts(store.List(), criteria)
	if *sortBy != "" {
		direction := domain.SortAscending
		if *desc {
			direction = domain.SortDescending
		}
		domain.SortProducts(products, domain.SortColumn(*sortBy), direction)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}
	return printTable(products)
}

func printTable(products []domain.Product) error {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCATEGORY\tSTOCK\tRATING")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%d\t%.1f\n", p.ID, p.Name, p.Price, p.Category.Name, p.Stock, p.Rating)
	}
	return w.Flush()
}

func runAdd(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "product name (required)")
	price := fs.Float64("price", 0, "price")
	categoryID := fs.Int64("category", 0, "category id")
	stock := fs.Int("stock", 0, "units in stock")
	rating := fs.Float64("rating", 0, "rating")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("add: -name is required")
	}

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := core.NewUniqueNameValidator(store).Validate(ctx, *name); err != nil {
		return err
	}

	draft := domain.Draft{
		Name:        *name,
		Price:       *price,
		Stock:       *stock,
		Rating:      *rating,
		Description: *description,
	}
	if *categoryID != 0 {
		categories := core.NewCategoryStore()
		defer categories.Close()
		c, ok := categories.Find(*categoryID)
		if !ok {
			return fmt.Errorf("unknown category id %d", *categoryID)
		}
		draft.Category = c
	}

	added, err := store.Add(ctx, draft)
	if err != nil {
		return err
	}
	logger.Info("product added", "id", added.ID, "name", added.Name)
	return nil
}

func runUpdate(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id (required)")
	name := fs.String("name", "", "new name (empty keeps current)")
	price := fs.Float64("price", -1, "new price (-1 keeps current)")
	stock := fs.Int("stock", -1, "new stock (-1 keeps current)")
	rating := fs.Float64("rating", -1, "new rating (-1 keeps current)")
	description := fs.String("description", "", "new description (empty keeps current)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("update: -id is required")
	}

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var current *domain.Product
	for _, p := range store.List() {
		if p.ID == *id {
			copied := p
			current = &copied
			break
		}
	}
	if current == nil {
		return fmt.Errorf("no product with id %d", *id)
	}
	if *name != "" {
		current.Name = *name
	}
	if *price >= 0 {
		current.Price = *price
	}
	if *stock >= 0 {
		current.Stock = *stock
	}
	if *rating >= 0 {
		current.Rating = *rating
	}
	if *description != "" {
		current.Description = *description
	}

	if err := store.Update(ctx, *current); err != nil {
		return err
	}
	logger.Info("product updated", "id", current.ID)
	return nil
}

func runDelete(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("delete: -id is required")
	}

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.Delete(ctx, *id); err != nil {
		return err
	}
	logger.Info("product deleted", "id", *id)
	return nil
}

func runWatch(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	updates := make(chan []domain.Product, 8)
	sub := store.Products().Subscribe(func(products []domain.Product) {
		select {
		case updates <- products:
		default:
		}
	})
	defer sub.Cancel()

	logger.Info("watching catalog", "slot", cfg.SlotName, "driver", cfg.StorageDriver)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case products := <-updates:
			fmt.Printf("-- %s: %d products\n", time.Now().Format(time.RFC3339), len(products))
			if err := printTable(products); err != nil {
				return err
			}
		}
	}
}
