package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

// cmdEnv 讓測試可以替換檔案系統與時間
type cmdEnv struct {
	appOpts []appcontext.Option
	now     func() time.Time
}

type cliOption func(*cmdEnv)

func withAppOptions(opts ...appcontext.Option) cliOption {
	return func(rt *cmdEnv) {
		rt.appOpts = append(rt.appOpts, opts...)
	}
}

func withClock(now func() time.Time) cliOption {
	return func(rt *cmdEnv) {
		rt.now = now
	}
}

func newCLI(stdout io.Writer, opts ...cliOption) *cli.App {
	rt := &cmdEnv{now: time.Now}
	for _, opt := range opts {
		opt(rt)
	}

	return &cli.App{
		Name:   "storefront",
		Usage:  "food ordering storefront: menu, cart, checkout and order history",
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a config file (.env or yaml)",
				EnvVars: []string{config.ConfigPathEnv},
			},
		},
		Commands: []*cli.Command{
			rt.menuCommand(),
			rt.featuredCommand(),
			rt.specialsCommand(),
			rt.cartCommand(),
			rt.checkoutCommand(),
			rt.ordersCommand(),
			rt.resetCommand(),
			rt.serveCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(c.String("config"))
	cf, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return loader, cf, nil
}

// withApp 每個指令各自建立並關閉 ApplicationContext
func (rt *cmdEnv) withApp(fn func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		_, cf, err := loadConfig(c)
		if err != nil {
			return err
		}
		ctx := c.Context
		app, err := appcontext.NewApplicationContext(ctx, cf, rt.appOpts...)
		if err != nil {
			return err
		}
		defer app.Shutdown(context.Background())
		return fn(ctx, c, app)
	}
}

func itemIDArg(c *cli.Context) (int, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one item id")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("item id must be a positive integer, got %q", c.Args().First())
	}
	return id, nil
}

func (rt *cmdEnv) menuCommand() *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "list menu items",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Value: "all", Usage: "burger, pizza, chicken, fries, dessert, drinks or all"},
			&cli.StringFlag{Name: "search", Usage: "match name or description"},
			&cli.StringFlag{Name: "sort", Value: string(catalog.SortPopularity), Usage: "popularity, price-low, price-high or rating"},
		},
		Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
			if !catalog.IsValidSortOption(c.String("sort")) {
				return fmt.Errorf("unknown sort %q", c.String("sort"))
			}
			items := app.Catalog.Search(catalog.Query{
				Category: c.String("category"),
				Text:     c.String("search"),
				Sort:     catalog.SortOption(c.String("sort")),
			})
			return renderMenu(c.App.Writer, items, rt.now())
		}),
	}
}

func (rt *cmdEnv) featuredCommand() *cli.Command {
	return &cli.Command{
		Name:  "featured",
		Usage: "list featured items",
		Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
			return renderMenu(c.App.Writer, app.Catalog.Featured(), rt.now())
		}),
	}
}

func (rt *cmdEnv) specialsCommand() *cli.Command {
	return &cli.Command{
		Name:  "specials",
		Usage: "show the daily special",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "day to look up, " + dateLayout + " (default today)"},
		},
		Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
			date := rt.now()
			if raw := c.String("date"); raw != "" {
				d, err := time.ParseInLocation(dateLayout, raw, date.Location())
				if err != nil {
					return fmt.Errorf("date must look like %s: %w", dateLayout, err)
				}
				date = d
			}
			fmt.Fprintf(c.App.Writer, "%s special: %s (10%% off)\n", catalog.DayName(date), catalog.SpecialCategoryFor(date))
			return renderMenu(c.App.Writer, app.Catalog.Specials(date), date)
		}),
	}
}

func (rt *cmdEnv) cartCommand() *cli.Command {
	show := func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
		return renderCart(c.App.Writer, app.CartService.Lines(), app.CartService.Summary())
	}
	return &cli.Command{
		Name:  "cart",
		Usage: "show or change the cart",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "show cart lines and totals",
				Action: rt.withApp(show),
			},
			{
				Name:      "add",
				Usage:     "add one of an item",
				ArgsUsage: "<item id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "special", Usage: "use the special price when the item is on today's special"},
				},
				Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
					id, err := itemIDArg(c)
					if err != nil {
						return err
					}
					if c.Bool("special") {
						err = app.CartService.AddSpecial(ctx, id, rt.now())
					} else {
						err = app.CartService.AddToCart(ctx, id, false)
					}
					if err != nil {
						return err
					}
					return show(ctx, c, app)
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove one of an item",
				ArgsUsage: "<item id>",
				Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
					id, err := itemIDArg(c)
					if err != nil {
						return err
					}
					if err := app.CartService.RemoveFromCart(ctx, id); err != nil {
						return err
					}
					return show(ctx, c, app)
				}),
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
					if err := app.CartService.ClearCart(ctx); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "cart cleared")
					return nil
				}),
			},
		},
	}
}

func (rt *cmdEnv) checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order with a simulated payment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "payment", Value: string(service.PaymentCreditCard), Usage: "credit or paypal"},
			&cli.StringFlag{Name: "card", Usage: "card number for credit payments"},
		},
		Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
			order, err := app.CheckoutService.Checkout(ctx, service.Payment{
				Method:     service.PaymentMethod(c.String("payment")),
				CardNumber: c.String("card"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "order %s placed\n", order.ID)
			return renderOrder(c.App.Writer, order)
		}),
	}
}

func (rt *cmdEnv) ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "show or clear order history",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list orders, newest first",
				Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
					return renderOrders(c.App.Writer, app.OrderHistoryService.Orders())
				}),
			},
			{
				Name:      "show",
				Usage:     "show one order with its price breakdown",
				ArgsUsage: "<order id>",
				Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
					order, err := app.OrderHistoryService.Get(c.Args().First())
					if err != nil {
						return err
					}
					return renderOrder(c.App.Writer, order)
				}),
			},
			{
				Name:  "clear",
				Usage: "delete every order",
				Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
					if err := app.OrderHistoryService.ClearOrderHistory(ctx); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "order history cleared")
					return nil
				}),
			},
		},
	}
}

func (rt *cmdEnv) resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "delete the stored cart and order history",
		Action: rt.withApp(func(ctx context.Context, c *cli.Context, app *appcontext.ApplicationContext) error {
			if err := app.ResetStorage(ctx); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "storage reset")
			return nil
		}),
	}
}
