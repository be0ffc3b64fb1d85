package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/calleja/devgear/internal/cart"
	"github.com/calleja/devgear/internal/checkout"
	"github.com/calleja/devgear/internal/client"
	"github.com/calleja/devgear/internal/session"
)

const usage = `usage: shopctl <command> [args]

commands:
  sale                       list products on sale
  shop                       list the full catalog
  register <user> <pass>     create an account
  login <user> <pass>        log in and persist the session
  logout                     clear the local session
  cart show                  print the cart with totals
  cart add <id> <qty>        add a catalog product to the cart
  cart set <id> <qty>        set a line quantity (0 removes)
  cart remove <id>           remove a line
  cart clear                 empty the cart
  checkout -cvv <cvv>        validate and submit the purchase
  history                    list past purchases
`

func main() {
	_ = godotenv.Load()
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	base := os.Getenv("SHOP_API")
	if base == "" {
		base = "http://localhost:8080"
	}
	statePath := os.Getenv("SHOPCTL_STATE")
	if statePath == "" {
		home, _ := os.UserHomeDir()
		statePath = filepath.Join(home, ".shopctl.db")
	}

	store, err := session.Open(statePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("open session store")
	}
	defer store.Close()

	api := client.New(base)
	api.SetTokenSource(store.Token)

	ctx := context.Background()

	switch os.Args[1] {
	case "sale":
		cmdSale(ctx, api)
	case "shop":
		cmdShop(ctx, api)
	case "register":
		requireArgs(4)
		if err := api.Register(ctx, os.Args[2], os.Args[3]); err != nil {
			zlog.Fatal().Err(err).Msg("register")
		}
		fmt.Println("account created, now log in")
	case "login":
		requireArgs(4)
		cmdLogin(ctx, api, store)
	case "logout":
		if err := store.Clear(); err != nil {
			zlog.Fatal().Err(err).Msg("logout")
		}
		fmt.Println("logged out")
	case "cart":
		cmdCart(ctx, api, store)
	case "checkout":
		cmdCheckout(ctx, api, store)
	case "history":
		cmdHistory(ctx, api)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func requireArgs(n int) {
	if len(os.Args) < n {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func cmdSale(ctx context.Context, api *client.Client) {
	feed := &client.SaleFeed{Client: api}
	list, err := feed.Refresh(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("fetch sale listing")
	}
	if len(list) == 0 {
		fmt.Println("no sale items available, check back soon")
		return
	}
	for _, p := range list {
		tag := ""
		if p.Featured {
			tag = "  [featured]"
		}
		fmt.Printf("%4d  %-32s %8s  was %8s%s\n", p.ID, p.Name, "$"+p.SalePrice, "$"+p.OriginalPrice, tag)
	}
}

func cmdShop(ctx context.Context, api *client.Client) {
	list, err := api.ShopProducts(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("fetch shop listing")
	}
	for _, p := range list {
		fmt.Printf("%4d  %-32s %8s\n", p.ID, p.Name, "$"+p.Price)
	}
}

func cmdLogin(ctx context.Context, api *client.Client, store *session.Store) {
	token, user, err := api.Login(ctx, os.Args[2], os.Args[3])
	if err != nil {
		zlog.Fatal().Err(err).Msg("login")
	}
	if err := store.SaveSession(token, user); err != nil {
		zlog.Fatal().Err(err).Msg("persist session")
	}
	fmt.Printf("logged in as %s\n", user.Username)
}

func loadCart(store *session.Store) *cart.State {
	c := cart.New()
	if raw, ok := store.Cart(); ok {
		_ = json.Unmarshal(raw, c)
	}
	return c
}

func saveCart(store *session.Store, c *cart.State) {
	raw, err := json.Marshal(c)
	if err != nil {
		zlog.Fatal().Err(err).Msg("encode cart")
	}
	if err := store.SaveCart(raw); err != nil {
		zlog.Fatal().Err(err).Msg("persist cart")
	}
}

func cmdCart(ctx context.Context, api *client.Client, store *session.Store) {
	requireArgs(3)
	c := loadCart(store)
	switch os.Args[2] {
	case "show":
		printCart(c)
		return
	case "add":
		requireArgs(5)
		qty, _ := strconv.Atoi(os.Args[4])
		it, err := catalogItem(ctx, api, os.Args[3])
		if err != nil {
			zlog.Fatal().Err(err).Msg("cart add")
		}
		it.Quantity = qty
		c.Add(it)
	case "set":
		requireArgs(5)
		qty, _ := strconv.Atoi(os.Args[4])
		c.UpdateQuantity(os.Args[3], qty)
	case "remove":
		requireArgs(4)
		c.Remove(os.Args[3])
	case "clear":
		c.Clear()
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	saveCart(store, c)
	printCart(c)
}

// catalogItem resolves a product id against the shop listing so cart lines
// carry the catalog's name and price, not user-typed ones.
func catalogItem(ctx context.Context, api *client.Client, id string) (cart.Item, error) {
	list, err := api.ShopProducts(ctx)
	if err != nil {
		return cart.Item{}, err
	}
	for _, p := range list {
		if strconv.FormatUint(uint64(p.ID), 10) == id {
			img := ""
			if p.Image != nil {
				img = *p.Image
			}
			return cart.Item{ID: id, Name: p.Name, Price: p.Price, Image: img}, nil
		}
	}
	return cart.Item{}, fmt.Errorf("product %s not found in catalog", id)
}

func printCart(c *cart.State) {
	if c.Len() == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, it := range c.Items() {
		fmt.Printf("%4s  %-32s %8s x%d\n", it.ID, it.Name, "$"+it.Price, it.Quantity)
	}
	fmt.Printf("\nsubtotal %s\ntax      %s\ntotal    %s\n",
		cart.Format(c.Subtotal()), cart.Format(c.Tax()), cart.Format(c.Total()))
}

func cmdCheckout(ctx context.Context, api *client.Client, store *session.Store) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	cvv := fs.String("cvv", "", "card CVV (3-4 digits)")
	name := fs.String("name", "", "cardholder name")
	card := fs.String("card", "", "card number")
	expiry := fs.String("exp", "", "expiry MM/YY")
	_ = fs.Parse(os.Args[2:])

	c := loadCart(store)
	if c.Len() == 0 {
		fmt.Println("cart is empty")
		return
	}
	flow := checkout.NewFlow(c, store, api)
	outcome, err := flow.Checkout(ctx, checkout.PaymentForm{
		CardholderName: *name, CardNumber: *card, ExpiryDate: *expiry, CVV: *cvv,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("checkout")
	}
	switch {
	case outcome.RedirectLogin:
		fmt.Println("please log in first: shopctl login <user> <pass>")
	case outcome.State == checkout.StateSuccess:
		saveCart(store, c)
		fmt.Printf("order placed successfully, transaction id #%d\n", outcome.PurchaseID)
	default:
		// cart is kept so the purchase can be retried as-is
		fmt.Printf("checkout failed: %s\n", outcome.Err)
	}
}

func cmdHistory(ctx context.Context, api *client.Client) {
	list, err := api.Purchases(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("fetch purchases")
	}
	if len(list) == 0 {
		fmt.Println("no purchases yet")
		return
	}
	for _, p := range list {
		fmt.Printf("#%d  %s  total %s  (%d items)\n", p.ID, p.CreatedAt.Format("2006-01-02 15:04"), "$"+p.Total, len(p.Items))
	}
}
