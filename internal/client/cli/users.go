package cli

import (
	"context"
	"flag"
	"fmt"

	gs "github.com/dmitrijs2005/gophgate/internal/server/grpc"
)

func (a *App) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: users list|get|update|delete", ErrUsage)
	}

	switch args[0] {
	case "list":
		fs := newFlagSet("users list")
		page := fs.Int("page", 1, "page number")
		limit := fs.Int("limit", 5, "page size")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}

		ctx, cancel := a.call(ctx)
		defer cancel()

		list, err := a.client.ListUsers(ctx, *page, *limit)
		if err != nil {
			return err
		}
		return a.printJSON(list)

	case "get":
		if len(args) != 2 || args[1] == "" {
			return fmt.Errorf("%w: users get <id>", ErrUsage)
		}

		ctx, cancel := a.call(ctx)
		defer cancel()

		p, err := a.client.GetUser(ctx, args[1])
		if err != nil {
			return err
		}
		return a.printJSON(p)

	case "update":
		if len(args) < 2 || args[1] == "" {
			return fmt.Errorf("%w: users update <id> [-email e] [-role r] [-password]", ErrUsage)
		}
		fs := newFlagSet("users update")
		email := fs.String("email", "", "new email")
		role := fs.String("role", "", "new role (admins only)")
		newPassword := fs.Bool("password", false, "prompt for a new password")
		if err := fs.Parse(args[2:]); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}

		req := &gs.UpdateUserRequest{ID: args[1]}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "email":
				req.Email = email
			case "role":
				req.Role = role
			}
		})
		if *newPassword {
			pw, err := GetPassword(a.out)
			if err != nil {
				return err
			}
			req.Password = &pw
		}

		ctx, cancel := a.call(ctx)
		defer cancel()

		p, err := a.client.UpdateUser(ctx, req)
		if err != nil {
			return err
		}
		return a.printJSON(p)

	case "delete":
		if len(args) != 2 || args[1] == "" {
			return fmt.Errorf("%w: users delete <id>", ErrUsage)
		}

		ctx, cancel := a.call(ctx)
		defer cancel()

		if err := a.client.DeleteUser(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted %s\n", args[1])
		return nil
	}
	return fmt.Errorf("%w: unknown users subcommand %q", ErrUsage, args[0])
}
