package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
)

// ErrUsage is returned for unknown commands or bad command arguments.
var ErrUsage = errors.New("usage")

const usage = `usage: authctl [-a addr] [-token t] [-timeout d] [-c file] <command>

commands:
  signup [-email e] [-role user|admin]
  signin [-email e]
  whoami
  users list [-page n] [-limit n]
  users get <id>
  users update <id> [-email e] [-role user|admin] [-password]
  users delete <id>
  hash [-alg bcrypt|argon2id]
  ping`

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
}

// NewApp dials the configured endpoint. The connection is established
// lazily on the first remote call.
func NewApp(c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	apiClient, err := client.NewAuthClient(c.ServerEndpointAddr, c.Token)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, in, out), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.client.Close()

	if len(args) == 0 {
		return fmt.Errorf("%w: no command given\n%s", ErrUsage, usage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return a.signUp(ctx, rest)
	case "signin":
		return a.signIn(ctx, rest)
	case "whoami":
		return a.whoAmI(ctx)
	case "users":
		return a.users(ctx, rest)
	case "hash":
		return a.hash(ctx, rest)
	case "ping":
		return a.ping(ctx)
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, cmd, usage)
}

// call applies the configured per-call deadline.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Timeout > 0 {
		return context.WithTimeout(ctx, a.config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) ping(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SERVING")
	return nil
}
