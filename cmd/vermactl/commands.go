package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
	"github.com/vermahardware/storefront/internal/guard"
)

var errUsage = errors.New("invalid arguments")

type command struct {
	usage   string
	summary string
	run     func(ctx context.Context, c *client, args []string) error
}

var commands = map[string]command{
	"login":          {"<username|email> [-password secret]", "sign in and remember the session", cmdLogin},
	"signup":         {"-username name -password secret [-name n] [-email e]", "create an account and sign in", cmdSignup},
	"logout":         {"", "forget the stored session", cmdLogout},
	"whoami":         {"", "show the signed-in identity", cmdWhoami},
	"open":           {"<route>", "evaluate a storefront route for the current identity", cmdOpen},
	"products":       {"[-category c]", "list the catalog, newest first", cmdProducts},
	"product":        {"<id>", "show one product and record the view", cmdProduct},
	"categories":     {"", "list product categories", cmdCategories},
	"recent":         {"", "show recently viewed products", cmdRecent},
	"product-add":    {"-name n -price p -category c [-description d] [-image-url u]", "add a product (staff)", cmdProductAdd},
	"product-update": {"<id> [-name n] [-price p] [-category c] [-description d] [-image-url u]", "change a product (staff)", cmdProductUpdate},
	"product-delete": {"<id>", "remove a product (staff)", cmdProductDelete},
	"contact":        {"-name n -email e -message m", "send a contact inquiry", cmdContact},
	"contacts":       {"", "list contact inquiries (staff)", cmdContacts},
	"contact-delete": {"<id>", "remove a contact inquiry (staff)", cmdContactDelete},
	"export":         {"[-o file] [-display]", "export contact inquiries as CSV (staff)", cmdExport},
	"create-admin":   {"-username name -password secret [-name n] [-email e]", "create an admin account (staff)", cmdCreateAdmin},
	"users":          {"", "list accounts (staff)", cmdUsers},
	"user-role":      {"<id> <user|admin|superadmin>", "change an account's role (superadmin)", cmdUserRole},
	"user-delete":    {"<id>", "remove an account (staff)", cmdUserDelete},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: vermactl <command> [arguments]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, commands[name].summary)
	}
	_ = tw.Flush()
}

// describe turns an error into the message shown to the user. Backend
// failures collapse into one generic message; the cause is in the log.
func describe(err error) (string, bool) {
	switch {
	case errors.Is(err, errUsage):
		return err.Error(), false
	case errors.Is(err, domain.ErrValidation):
		return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "), false
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid username or password", false
	case errors.Is(err, domain.ErrUserExists):
		return "that username or email is already registered", false
	case errors.Is(err, domain.ErrSessionInvalid):
		return "your session has expired, please log in again", false
	case errors.Is(err, domain.ErrUnauthenticated):
		return "please log in first", false
	case errors.Is(err, domain.ErrForbidden):
		return "your account cannot do that", false
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrContactNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return unwrapAll(err).Error(), false
	}
	return "something went wrong, please try again", true
}

func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// positional splits leading positional arguments from trailing flags.
func positional(args []string, n int) ([]string, []string, error) {
	if len(args) < n {
		return nil, nil, errUsage
	}
	for _, a := range args[:n] {
		if strings.HasPrefix(a, "-") {
			return nil, nil, errUsage
		}
	}
	return args[:n], args[n:], nil
}

// --- Session ---

func cmdLogin(ctx context.Context, c *client, args []string) error {
	pos, rest, err := positional(args, 1)
	if err != nil {
		return err
	}
	fs := newFlags("login")
	password := fs.String("password", "", "password; read from stdin when omitted")
	if err := parse(fs, rest); err != nil {
		return err
	}

	secret := *password
	if secret == "" {
		fmt.Fprint(c.out, "Password: ")
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		secret = strings.TrimRight(line, "\r\n")
		fmt.Fprintln(c.out)
	}

	user, err := c.identity.Login(ctx, pos[0], secret)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s (%s)\n", user.Username, user.Role)
	return openLanding(c)
}

func signupFlags(name string, args []string) (ports.SignupInput, error) {
	fs := newFlags(name)
	var in ports.SignupInput
	fs.StringVar(&in.Username, "username", "", "")
	fs.StringVar(&in.Password, "password", "", "")
	fs.StringVar(&in.Name, "name", "", "")
	fs.StringVar(&in.Email, "email", "", "")
	if err := parse(fs, args); err != nil {
		return in, err
	}
	if in.Username == "" || in.Password == "" {
		return in, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	return in, nil
}

func cmdSignup(ctx context.Context, c *client, args []string) error {
	in, err := signupFlags("signup", args)
	if err != nil {
		return err
	}
	user, err := c.identity.Signup(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Welcome, %s! Your account is ready.\n", user.Username)
	return openLanding(c)
}

func cmdLogout(ctx context.Context, c *client, _ []string) error {
	if err := c.identity.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signed out.")
	return nil
}

func cmdWhoami(_ context.Context, c *client, _ []string) error {
	state := c.identity.Current()
	if !state.Authenticated() {
		fmt.Fprintln(c.out, "Not signed in.")
		return nil
	}
	u := state.User
	fmt.Fprintf(c.out, "%s (%s)\n", u.Username, u.Role)
	if u.Name != "" {
		fmt.Fprintf(c.out, "name:  %s\n", u.Name)
	}
	if u.Email != "" {
		fmt.Fprintf(c.out, "email: %s\n", u.Email)
	}
	return nil
}

// openLanding shows where the signed-in identity lands after login.
func openLanding(c *client) error {
	target := guard.LandingPath
	if domain.Can(c.identity.Current().User, domain.ActionViewAdminDashboard) {
		target = "/admin-dashboard"
	}
	return openRoute(c, target)
}

func cmdOpen(_ context.Context, c *client, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return openRoute(c, args[0])
}

// openRoute follows guard redirects until a route renders.
func openRoute(c *client, path string) error {
	state := c.identity.Current()
	for hops := 0; hops < 3; hops++ {
		route, decision, ok := guard.Open(state, path)
		if !ok {
			fmt.Fprintf(c.out, "404: %s not found\n", path)
			return nil
		}
		switch decision.Outcome {
		case guard.Render:
			fmt.Fprintf(c.out, "-> %s (%s)\n", path, route.Name)
			return nil
		case guard.Wait:
			fmt.Fprintln(c.out, "Loading...")
			return nil
		default:
			fmt.Fprintf(c.out, "%s redirected to %s\n", path, decision.Location)
			path = decision.Location
		}
	}
	return fmt.Errorf("redirect loop at %s", path)
}

// --- Catalog ---

func printProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t₹%d\n", p.ID, p.Name, p.Category, p.Price)
	}
	_ = tw.Flush()
}

func cmdProducts(ctx context.Context, c *client, args []string) error {
	fs := newFlags("products")
	category := fs.String("category", "", "")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := c.catalog.Load(ctx); err != nil {
		return err
	}
	printProducts(c.out, c.catalog.ByCategory(*category))
	return nil
}

func cmdProduct(ctx context.Context, c *client, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := c.catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n  ₹%d · %s\n  %s\n", p.Name, p.Price, p.Category, p.Description)
	if p.ImageURL != "" {
		fmt.Fprintf(c.out, "  image: %s\n", p.ImageURL)
	}

	if user := c.identity.Current().User; user != nil {
		if err := c.app.History.Record(ctx, ports.ViewEvent{UserID: user.ID, ProductID: p.ID}); err != nil {
			c.log.Warn().Err(err).Str("product_id", p.ID).Msg("failed to record view")
		}
	}
	return nil
}

func cmdCategories(ctx context.Context, c *client, _ []string) error {
	if err := c.catalog.Load(ctx); err != nil {
		return err
	}
	for _, cat := range c.catalog.Categories() {
		fmt.Fprintln(c.out, cat)
	}
	return nil
}

func cmdRecent(ctx context.Context, c *client, _ []string) error {
	user := c.identity.Current().User
	if user == nil {
		return domain.ErrUnauthenticated
	}
	products, err := c.app.History.Recent(ctx, user.ID)
	if err != nil {
		return err
	}
	printProducts(c.out, products)
	return nil
}

func cmdProductAdd(ctx context.Context, c *client, args []string) error {
	fs := newFlags("product-add")
	var in ports.ProductInput
	fs.StringVar(&in.Name, "name", "", "")
	fs.Int64Var(&in.Price, "price", 0, "")
	fs.StringVar(&in.Category, "category", "", "")
	fs.StringVar(&in.Description, "description", "", "")
	fs.StringVar(&in.ImageURL, "image-url", "", "")
	if err := parse(fs, args); err != nil {
		return err
	}

	p, err := c.catalog.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %s (%s)\n", p.Name, p.ID)
	return nil
}

func cmdProductUpdate(ctx context.Context, c *client, args []string) error {
	pos, rest, err := positional(args, 1)
	if err != nil {
		return err
	}
	fs := newFlags("product-update")
	name := fs.String("name", "", "")
	price := fs.Int64("price", 0, "")
	category := fs.String("category", "", "")
	description := fs.String("description", "", "")
	imageURL := fs.String("image-url", "", "")
	if err := parse(fs, rest); err != nil {
		return err
	}

	// Only flags given on the command line become part of the patch.
	var patch domain.ProductPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "price":
			patch.Price = price
		case "category":
			patch.Category = category
		case "description":
			patch.Description = description
		case "image-url":
			patch.ImageURL = imageURL
		}
	})

	p, err := c.catalog.Update(ctx, pos[0], patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated %s (%s)\n", p.Name, p.ID)
	return nil
}

func cmdProductDelete(ctx context.Context, c *client, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.catalog.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Deleted.")
	return nil
}

// --- Contacts ---

func cmdContact(ctx context.Context, c *client, args []string) error {
	fs := newFlags("contact")
	var in ports.ContactInput
	fs.StringVar(&in.Name, "name", "", "")
	fs.StringVar(&in.Email, "email", "", "")
	fs.StringVar(&in.Message, "message", "", "")
	if err := parse(fs, args); err != nil {
		return err
	}

	if _, err := c.contacts.Submit(ctx, in); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Thanks! We'll get back to you soon.")
	return nil
}

func cmdContacts(ctx context.Context, c *client, _ []string) error {
	if err := c.contacts.Load(ctx); err != nil {
		return err
	}
	contacts := c.contacts.Contacts()
	if len(contacts) == 0 {
		fmt.Fprintln(c.out, "No inquiries.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tEMAIL\tMESSAGE")
	for _, ct := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ct.ID, ct.CreatedAt.Format("2006-01-02"), ct.Name, ct.Email, oneLine(ct.Message, 60))
	}
	return tw.Flush()
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

func cmdContactDelete(ctx context.Context, c *client, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.contacts.Load(ctx); err != nil {
		return err
	}
	if err := c.contacts.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Deleted.")
	return nil
}

func cmdExport(ctx context.Context, c *client, args []string) error {
	fs := newFlags("export")
	output := fs.String("o", "", "output file; defaults to contacts-<date>.csv, - for stdout")
	display := fs.Bool("display", false, "use the Name,Email,Message,Date header")
	if err := parse(fs, args); err != nil {
		return err
	}

	var buf strings.Builder
	filename, err := c.contacts.Export(ctx, &buf, ports.ExportOptions{DisplayHeader: *display})
	if err != nil {
		return err
	}

	switch *output {
	case "-":
		_, err = io.WriteString(c.out, buf.String())
		return err
	case "":
		*output = filename
	}
	if err := os.WriteFile(*output, []byte(buf.String()), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Exported to %s\n", *output)
	return nil
}

// --- Users ---

func cmdCreateAdmin(ctx context.Context, c *client, args []string) error {
	in, err := signupFlags("create-admin", args)
	if err != nil {
		return err
	}
	user, err := c.identity.CreateAdmin(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Admin %s created.\n", user.Username)
	return nil
}

func cmdUsers(ctx context.Context, c *client, _ []string) error {
	users, err := c.app.Users.List(ctx, c.identity.Current().User)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tEMAIL\tJOINED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Email, u.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func cmdUserRole(ctx context.Context, c *client, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	user, err := c.app.Users.ChangeRole(ctx, c.identity.Current().User, args[0], domain.Role(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is now %s.\n", user.Username, user.Role)
	return nil
}

func cmdUserDelete(ctx context.Context, c *client, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.app.Users.Delete(ctx, c.identity.Current().User, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Deleted.")
	return nil
}
