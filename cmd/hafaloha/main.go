package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/api"
	"github.com/Shimizu-Technology/hafaloha-go/internal/cart"
	"github.com/Shimizu-Technology/hafaloha-go/internal/checkout"
	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
	"github.com/Shimizu-Technology/hafaloha-go/internal/identity"
	"github.com/Shimizu-Technology/hafaloha-go/internal/session"
)

type Config struct {
	BaseURL        string
	AuthToken      string
	RequestTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		BaseURL:        getEnv("HAFALOHA_API_URL", "http://localhost:8090"),
		AuthToken:      getEnv("HAFALOHA_AUTH_TOKEN", ""),
		RequestTimeout: 30 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	demo := flag.Bool("demo", false, "run a pickup checkout against the first available product")
	flag.Parse()

	cfg := loadConfig()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := session.DefaultFileStore()
	if err != nil {
		log.Fatal("session store", zap.Error(err))
	}

	opts := []api.Option{api.WithLogger(log)}
	if cfg.AuthToken != "" {
		opts = append(opts, api.WithTokenSource(identity.NewStaticTokenSource(cfg.AuthToken)))
	}
	client := api.New(cfg.BaseURL, store, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if *demo {
		if err := runDemo(ctx, client, log); err != nil {
			log.Fatal("demo checkout", zap.Error(err))
		}
		return
	}

	products, err := client.ListProducts(ctx)
	if err != nil {
		log.Fatal("list products", zap.Error(err))
	}
	for _, p := range products {
		status := "in stock"
		if !p.ActuallyAvailable() {
			status = "unavailable"
		}
		fmt.Printf("%-14s %-28s %8s  %s\n", p.ID, p.Name, cents(p.Price), status)
	}
}

// runDemo walks the whole shopper path: pick a product, put it in the cart
// and place a pickup order. Useful against the stub server for eyeballing
// request/response shapes.
func runDemo(ctx context.Context, client *api.Client, log *zap.Logger) error {
	products, err := client.ListProducts(ctx)
	if err != nil {
		return err
	}

	variantID := ""
	for _, p := range products {
		if !p.ActuallyAvailable() {
			continue
		}
		for _, v := range p.Variants {
			if p.VariantAvailable(v) {
				variantID = v.ID
				break
			}
		}
		if variantID != "" {
			break
		}
	}
	if variantID == "" {
		return fmt.Errorf("no purchasable variant in catalog")
	}

	holder := cart.NewHolder(client, log)
	if err := holder.AddItem(ctx, variantID, 1); err != nil {
		return err
	}
	fmt.Printf("cart: %d item(s), subtotal %s\n", holder.ItemCount(), cents(holder.Subtotal()))

	o := checkout.New(client, holder, log)
	if err := o.Start(ctx); err != nil {
		return err
	}
	o.SetContact(domain.Contact{Name: "Demo Shopper", Email: "demo@example.com", Phone: "671-555-0000"})
	o.SetDeliveryMethod(checkout.DeliveryPickup)

	order, err := o.Submit(ctx)
	if err != nil {
		if msg := o.LastError(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return err
	}
	fmt.Printf("order %s placed, total %s\n", order.ID, cents(order.Total))
	return nil
}

func cents(v int64) string {
	return fmt.Sprintf("$%d.%02d", v/100, v%100)
}
