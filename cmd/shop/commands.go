package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/iliyamo/shopcart/internal/cart"
	"github.com/iliyamo/shopcart/internal/client"
	"github.com/iliyamo/shopcart/internal/model"
	"github.com/iliyamo/shopcart/internal/shopui"
)

const defaultAPI = "http://localhost:8080"

// app carries what every command needs.  Tests replace the fields.
type app struct {
	api      *client.Client
	sessions client.SessionStore
	stdin    io.Reader
	stdout   io.Writer
	now      func() time.Time

	// runUI starts the interactive cart; tests stub it out.
	runUI func(shopui.Model) error
}

func run(args []string) error {
	sessions, err := client.DefaultSessionStore()
	if err != nil {
		return err
	}
	a := &app{
		sessions: sessions,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		now:      time.Now,
		runUI: func(m shopui.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	return a.dispatch(context.Background(), args)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	global := pflag.NewFlagSet("shop", pflag.ContinueOnError)
	global.SetInterspersed(false)
	apiURL := global.String("api", envOr("SHOP_API_URL", defaultAPI), "base URL of the shop API")
	global.SetOutput(a.stdout)
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			a.usage()
			return nil
		}
		return err
	}
	if a.api == nil {
		a.api = client.New(*apiURL)
	}

	rest := global.Args()
	if len(rest) == 0 {
		a.usage()
		return nil
	}
	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "products":
		return a.products(ctx, rest)
	case "cart":
		return a.cart(ctx, rest)
	case "help":
		a.usage()
		return nil
	}
	return fmt.Errorf("unknown command %q (try \"shop help\")", cmd)
}

func (a *app) usage() {
	fmt.Fprint(a.stdout, `usage: shop [--api URL] <command> [flags]

commands:
  register          create an account (--name --email --password --role)
  login             log in and remember the session (--email --password)
  logout            forget the stored session
  whoami            show the current session as the server sees it
  products add      add a product (admin; --code --name --price --description)
  products list     list every product (admin)
  products search   find a product by code fragment (admin; --code [--all])
  cart              open the interactive cart (--catalog FILE | --from-api)
`)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when omitted)")
	role := fs.String("role", model.RoleUser, "admin or user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw, err := a.passwordOr(*password)
	if err != nil {
		return err
	}
	msg, err := a.api.Register(ctx, client.RegisterRequest{Name: *name, Email: *email, Password: pw, Role: *role})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw, err := a.passwordOr(*password)
	if err != nil {
		return err
	}
	res, err := a.api.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(client.Session{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: logged in as %s (%s)\n", res.Message, res.User.Name, res.User.Role)
	return nil
}

func (a *app) logout() error {
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	me, err := a.api.Me(ctx, sess.Token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s (id %d, role %s), session expires %s\n",
		me.Email, me.ID, me.Role, time.Unix(me.Exp, 0).Format(time.RFC3339))
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("products: expected add, list or search")
	}
	sess, err := a.session()
	if err != nil {
		return err
	}
	sub, args := args[0], args[1:]
	switch sub {
	case "add":
		fs := pflag.NewFlagSet("products add", pflag.ContinueOnError)
		code := fs.String("code", "", "unique product code")
		name := fs.String("name", "", "product name")
		price := fs.String("price", "", "unit price, e.g. 9.99")
		desc := fs.String("description", "", "optional description")
		if err := fs.Parse(args); err != nil {
			return err
		}
		p, err := a.api.CreateProduct(ctx, sess.Token, client.NewProduct{Code: *code, Name: *name, Price: *price, Description: *desc})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "created product %d (%s)\n", p.ID, p.Code)
		return nil
	case "list":
		items, err := a.api.ListProducts(ctx, sess.Token)
		if err != nil {
			return err
		}
		return a.printProducts(items)
	case "search":
		fs := pflag.NewFlagSet("products search", pflag.ContinueOnError)
		code := fs.String("code", "", "code fragment to look for")
		all := fs.Bool("all", false, "return every match instead of the first")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *all {
			items, err := a.api.SearchProducts(ctx, sess.Token, *code)
			if err != nil {
				return err
			}
			return a.printProducts(items)
		}
		p, err := a.api.SearchProduct(ctx, sess.Token, *code)
		if err != nil {
			return err
		}
		return a.printProducts([]model.Product{p})
	}
	return fmt.Errorf("products: unknown subcommand %q", sub)
}

func (a *app) cart(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("cart", pflag.ContinueOnError)
	catalog := fs.String("catalog", "", "JSON file of {name, price} cards")
	fromAPI := fs.Bool("from-api", false, "load cards from the product API (admin session)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cards []shopui.Card
	switch {
	case *catalog != "" && *fromAPI:
		return errors.New("cart: --catalog and --from-api are exclusive")
	case *catalog != "":
		var err error
		if cards, err = shopui.LoadCatalog(*catalog); err != nil {
			return err
		}
	case *fromAPI:
		sess, err := a.session()
		if err != nil {
			return err
		}
		items, err := a.api.ListProducts(ctx, sess.Token)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errors.New("cart: the catalog is empty")
		}
		cards = shopui.CardsFromProducts(items)
	default:
		cards = shopui.DefaultCatalog()
	}
	return a.runUI(shopui.New(cards, cart.New()))
}

func (a *app) printProducts(items []model.Product) error {
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "no products")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tPRICE\tCREATED")
	for _, p := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", p.ID, p.Code, p.Name, p.Price, p.CreatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

// session loads the stored session and rejects an expired one locally.
func (a *app) session() (client.Session, error) {
	sess, err := a.sessions.Load()
	if errors.Is(err, client.ErrNoSession) {
		return client.Session{}, errors.New("not logged in; run \"shop login\" first")
	}
	if err != nil {
		return client.Session{}, err
	}
	if sess.Expired(a.now()) {
		return client.Session{}, errors.New("session expired; run \"shop login\" again")
	}
	return sess, nil
}

// passwordOr returns flagValue, or reads a password from stdin: without
// echo on a terminal, as a plain line otherwise.
func (a *app) passwordOr(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.stdout, "password: ")
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stdout)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
