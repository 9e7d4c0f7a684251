package app

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/atelier-cart/internal/action"
	"github.com/nikolayk812/atelier-cart/internal/cache"
	"github.com/nikolayk812/atelier-cart/internal/config"
	"github.com/nikolayk812/atelier-cart/internal/httpapi"
	"github.com/nikolayk812/atelier-cart/internal/port"
	"github.com/nikolayk812/atelier-cart/internal/ratelimit"
	"github.com/nikolayk812/atelier-cart/internal/repository"
	"github.com/nikolayk812/atelier-cart/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const mergePolicyName = "cart-merge"

type App struct {
	Merge    *service.MergeService
	Checkout *service.CheckoutService
	Carts    *service.CartService
	Actions  *action.Actions
	Handler  *httpapi.Handler
}

// New wires repositories, cache and rate limiter into the services and the HTTP handler.
func New(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, lg *zap.Logger) *App {
	carts := repository.NewCart(pool)
	users := repository.NewUser(pool)
	tagged := cache.NewRedisCache(rdb)
	limiter := ratelimit.NewRedisLimiter(rdb)

	a := &App{
		Merge: service.NewMergeService(carts, users, limiter, tagged, service.MergeConfig{
			MaxCartItems: cfg.MaxCartItems,
			RateLimit: port.RateLimitPolicy{
				Name:   mergePolicyName,
				Limit:  cfg.MergeRateLimit,
				Window: cfg.MergeRateWindow,
			},
		}, lg.Named("merge")),
		Checkout: service.NewCheckoutService(carts),
		Carts: service.NewCartService(carts, tagged, service.CartConfig{
			MaxCartItems: cfg.MaxCartItems,
			GuestCartTTL: cfg.GuestCartTTL,
			SummaryTTL:   cfg.SummaryCacheTTL,
		}, lg.Named("cart")),
	}

	a.Actions = action.New(a.Merge, a.Checkout, a.Carts, lg.Named("action"))
	a.Handler = httpapi.NewHandler(a.Actions, cfg.Currency, cfg.GuestCartTTL)

	return a
}

func (a *App) Router(cfg config.Config) http.Handler {
	return a.Handler.Router(cfg.RequestTimeout)
}
