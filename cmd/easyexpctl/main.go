// Command easyexpctl is a terminal client for the expense API: login with
// remembered credentials, record and list expenses, show stats, download
// the spreadsheet export and manage the type vocabularies.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/infra/client"
	"github.com/miniledger/easyexp-go/internal/infra/credstore"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

const usage = `usage: easyexpctl [-server URL] <command> [args]

commands:
  register              create an account
  login                 log in and remember credentials
  logout                log out and forget credentials
  add                   record an expense
  list                  list expenses (supports -range, -page, -limit)
  get <id>              show one expense
  delete <id>           delete an expense
  stats                 show totals and breakdowns (supports -range)
  export                download expenses.xlsx (supports -range, -o FILE)
  config                show the type vocabularies
  config set <kind> <options,comma,separated>
                        replace one vocabulary (kind: reimburseType|payType)
  config add <kind> <option>
  config rename <kind> <old> <new>
  config remove <kind> <option>
  change-password       change the account password
`

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API server base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	app, err := newApp(*serverURL)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "easyexpctl:", err)
	os.Exit(1)
}

type app struct {
	client *client.Client
	creds  *credstore.Store
}

func newApp(serverURL string) (*app, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	return &app{
		client: client.New(strings.TrimRight(serverURL, "/"), &http.Client{Timeout: 30 * time.Second}),
		creds:  credstore.New(filepath.Join(home, ".easyexp")),
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout(ctx)
	case "add":
		return a.withLogin(ctx, func() error { return a.add(ctx, args) })
	case "list":
		return a.withLogin(ctx, func() error { return a.list(ctx, args) })
	case "get":
		return a.withLogin(ctx, func() error { return a.get(ctx, args) })
	case "delete":
		return a.withLogin(ctx, func() error { return a.delete(ctx, args) })
	case "stats":
		return a.withLogin(ctx, func() error { return a.stats(ctx, args) })
	case "export":
		return a.withLogin(ctx, func() error { return a.export(ctx, args) })
	case "config":
		return a.withLogin(ctx, func() error { return a.config(ctx, args) })
	case "change-password":
		return a.withLogin(ctx, func() error { return a.changePassword(ctx) })
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// withLogin restores the remembered session before running fn.
func (a *app) withLogin(ctx context.Context, fn func() error) error {
	creds, found, err := a.creds.Load()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("not logged in, run: easyexpctl login")
	}
	if err := a.client.Login(ctx, creds.Username, creds.Password); err != nil {
		return fmt.Errorf("login as %s: %w", creds.Username, err)
	}
	return fn()
}

// ============================================================
// Auth commands
// ============================================================

func (a *app) register(ctx context.Context) error {
	username, password, err := promptCredentials()
	if err != nil {
		return err
	}
	if err := a.client.Register(ctx, username, password); err != nil {
		return err
	}
	fmt.Println("account created, run: easyexpctl login")
	return nil
}

func (a *app) login(ctx context.Context) error {
	username, password, err := promptCredentials()
	if err != nil {
		return err
	}
	if err := a.client.Login(ctx, username, password); err != nil {
		return err
	}
	if err := a.creds.Save(credstore.Credentials{
		Username: username,
		Password: password,
	}); err != nil {
		return fmt.Errorf("remember credentials: %w", err)
	}
	fmt.Printf("logged in as %s\n", username)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	creds, found, err := a.creds.Load()
	if err != nil {
		return err
	}
	if found {
		if err := a.client.Login(ctx, creds.Username, creds.Password); err == nil {
			a.client.Logout(ctx)
		}
	}
	if err := a.creds.Clear(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func (a *app) changePassword(ctx context.Context) error {
	fmt.Print("current password: ")
	current, err := readSecret()
	if err != nil {
		return err
	}
	fmt.Print("new password: ")
	next, err := readSecret()
	if err != nil {
		return err
	}
	if err := a.client.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	// keep the remembered credentials in sync
	if creds, found, err := a.creds.Load(); err == nil && found {
		creds.Password = next
		if err := a.creds.Save(creds); err != nil {
			return fmt.Errorf("update remembered credentials: %w", err)
		}
	}
	fmt.Println("password changed")
	return nil
}

// ============================================================
// Expense commands
// ============================================================

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	amount := fs.Float64("amount", 0, "expense amount")
	reimburseType := fs.String("type", "", "reimburse type")
	payType := fs.String("pay", "", "pay type")
	date := fs.String("date", time.Now().Format("2006-01-02"), "expense date (YYYY-MM-DD)")
	reimburseAmount := fs.Float64("reimbursed", 0, "reimbursed amount, for reimbursed records")
	other := fs.String("note", "", "free-form note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := &domain.ExpenseInput{
		Amount:        *amount,
		ReimburseType: *reimburseType,
		PayType:       *payType,
		Date:          *date,
		Other:         *other,
	}
	if *reimburseAmount > 0 {
		in.ReimburseAmount = reimburseAmount
	}

	created, err := a.client.CreateExpense(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s\n", created.ID)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	f, err := parseFilterFlags(fs, args, true)
	if err != nil {
		return err
	}

	page, err := a.client.ListExpenses(ctx, f)
	if err != nil {
		return err
	}

	for _, e := range page.Expenses {
		printExpense(e)
	}
	fmt.Printf("page %d, %d of %d records\n", page.Page, len(page.Expenses), page.Total)
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: easyexpctl get <id>")
	}
	e, err := a.client.GetExpense(ctx, args[0])
	if err != nil {
		return err
	}
	printExpense(*e)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: easyexpctl delete <id>")
	}
	if err := a.client.DeleteExpense(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	f, err := parseFilterFlags(fs, args, false)
	if err != nil {
		return err
	}

	resp, err := a.client.Stats(ctx, f)
	if err != nil {
		return err
	}

	fmt.Printf("total expense:      %10.2f\n", resp.TotalExpense)
	fmt.Printf("pending reimburse:  %10.2f\n", resp.PendingReimburse)
	fmt.Printf("reimbursed:         %10.2f\n", resp.Reimbursed)
	fmt.Printf("balance:            %10.2f\n", resp.Balance)

	if len(resp.ReimburseTypeStats) > 0 {
		fmt.Println("\nby reimburse type:")
		for _, s := range resp.ReimburseTypeStats {
			fmt.Printf("  %-12s %10.2f  (%d)\n", s.Type, s.Total, s.Count)
		}
	}
	if len(resp.PayTypeStats) > 0 {
		fmt.Println("\nby pay type:")
		for _, s := range resp.PayTypeStats {
			fmt.Printf("  %-12s %10.2f  (%d)\n", s.Type, s.Total, s.Count)
		}
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "expenses.xlsx", "output file")
	f, err := parseFilterFlags(fs, args, false)
	if err != nil {
		return err
	}

	data, err := a.client.Export(ctx, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

// ============================================================
// Config commands
// ============================================================

func (a *app) config(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cfg, err := a.client.GetConfig(ctx)
		if err != nil {
			return err
		}
		fmt.Println("reimburseType:", strings.Join(cfg.ReimburseTypes, ", "))
		fmt.Println("payType:      ", strings.Join(cfg.PayTypes, ", "))
		return nil
	}

	if len(args) < 3 {
		return fmt.Errorf("usage: easyexpctl config <set|add|rename|remove> <kind> ...")
	}
	kind := domain.VocabKind(args[1])

	var options []string
	switch args[0] {
	case "set":
		options = strings.Split(args[2], ",")
		for i := range options {
			options[i] = strings.TrimSpace(options[i])
		}
	case "add", "rename", "remove":
		// read-modify-write on the current vocabulary
		cfg, err := a.client.GetConfig(ctx)
		if err != nil {
			return err
		}
		current := cfg.List(kind)
		switch args[0] {
		case "add":
			options, err = domain.AddOption(current, args[2])
		case "rename":
			if len(args) != 4 {
				return fmt.Errorf("usage: easyexpctl config rename <kind> <old> <new>")
			}
			options, err = domain.RenameOption(current, args[2], args[3])
		case "remove":
			options, err = domain.RemoveOption(current, args[2])
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}

	cfg, err := a.client.SetConfig(ctx, kind, options)
	if err != nil {
		return err
	}
	fmt.Println("updated", kind+":", strings.Join(cfg.List(kind), ", "))
	return nil
}

// ============================================================
// Helpers
// ============================================================

// parseFilterFlags reads the shared -range/-from/-to/-type/-pay flags and,
// when paged is set, -page/-limit.
func parseFilterFlags(fs *flag.FlagSet, args []string, paged bool) (domain.Filter, error) {
	rangeName := fs.String("range", "all", "named range: all|thisYear|thisMonth|thisWeek|lastMonth|custom")
	from := fs.String("from", "", "custom range start (YYYY-MM-DD)")
	to := fs.String("to", "", "custom range end (YYYY-MM-DD)")
	reimburseType := fs.String("type", "", "filter by reimburse type")
	payType := fs.String("pay", "", "filter by pay type")

	var page, limit *int
	if paged {
		page = fs.Int("page", domain.DefaultPage, "page number")
		limit = fs.Int("limit", domain.DefaultLimit, "page size")
	}

	if err := fs.Parse(args); err != nil {
		return domain.Filter{}, err
	}

	var customStart, customEnd *time.Time
	if *from != "" {
		t, err := domain.ParseDate(*from)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("invalid -from date %q", *from)
		}
		customStart = &t
	}
	if *to != "" {
		t, err := domain.ParseDate(*to)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("invalid -to date %q", *to)
		}
		customEnd = &t
	}

	start, end := domain.ResolveRange(domain.NamedRange(*rangeName), time.Now(), customStart, customEnd)

	f := domain.Filter{
		StartDate:     start,
		EndDate:       end,
		ReimburseType: *reimburseType,
		PayType:       *payType,
	}
	if paged {
		f.Page = *page
		f.Limit = *limit
	}
	return f, nil
}

func printExpense(e domain.Expense) {
	reimbursed := "-"
	if e.ReimburseAmount != nil {
		reimbursed = fmt.Sprintf("%.2f", *e.ReimburseAmount)
	}
	fmt.Printf("%s  %s  %8.2f  %-6s %-6s %8s  %s\n",
		e.ID, e.Date.Format("2006-01-02"), e.Amount,
		e.ReimburseType, e.PayType, reimbursed, e.Other)
}

func promptCredentials() (username, password string, err error) {
	fmt.Print("username: ")
	if _, err := fmt.Scanln(&username); err != nil {
		return "", "", fmt.Errorf("read username: %w", err)
	}
	fmt.Print("password: ")
	password, err = readSecret()
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func readSecret() (string, error) {
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
