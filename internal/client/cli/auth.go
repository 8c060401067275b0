package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// credentials fills a missing email from the prompt and always prompts for
// the password.
func (a *App) credentials(email string) (string, string, error) {
	if email == "" {
		var err error
		email, err = GetSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return "", "", err
		}
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) signUp(ctx context.Context, args []string) error {
	fs := newFlagSet("signup")
	email := fs.String("email", "", "account email")
	role := fs.String("role", "", "requested role (user or admin)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	e, pw, err := a.credentials(*email)
	if err != nil {
		return err
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	p, err := a.client.SignUp(ctx, e, pw, *role)
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

func (a *App) signIn(ctx context.Context, args []string) error {
	fs := newFlagSet("signin")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	e, pw, err := a.credentials(*email)
	if err != nil {
		return err
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	token, err := a.client.SignIn(ctx, e, pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	return nil
}

func (a *App) whoAmI(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	who, err := a.client.WhoAmI(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(who)
}
