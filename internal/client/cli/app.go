package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrRejected       = errors.New("request rejected")
)

// Invoker runs one operation on the server. *client.GRPCClient implements it.
type Invoker interface {
	Invoke(ctx context.Context, operation string, payload map[string]any) (*client.Response, error)
}

type App struct {
	config  *config.Config
	invoker Invoker
	reader  *bufio.Reader
	out     io.Writer
	close   func() error
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		invoker: apiClient,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		close:   apiClient.Close,
	}, nil
}

// Run executes the command found in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if a.close != nil {
		defer a.close()
	}

	name := CommandFromArgs(args, config.ValueFlags)
	if name == "" || name == "help" {
		a.usage()
		if name == "" {
			return 2
		}
		return 0
	}

	if err := a.runCommand(ctx, name); err != nil {
		if !errors.Is(err, ErrRejected) {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return 1
	}
	return 0
}

// CommandFromArgs returns the first positional argument, skipping flags and
// the values of flags listed in valueFlags.
func CommandFromArgs(args []string, valueFlags []string) string {
	takesValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = struct{}{}
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
		if strings.Contains(arg, "=") {
			continue
		}
		if _, ok := takesValue[arg]; ok {
			i++
		}
	}
	return ""
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: gophauth-cli [-a addr] [-t seconds] <command>")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.out, "  %-9s %s\n", name, commands[name].usage)
	}
}

func (a *App) printResponse(success bool, status, message string, data map[string]any) {
	if success {
		fmt.Fprintf(a.out, "Success (%s)", status)
	} else {
		fmt.Fprintf(a.out, "Rejected")
	}
	if message != "" {
		fmt.Fprintf(a.out, ": %s", message)
	}
	fmt.Fprintln(a.out)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%s: %v\n", k, data[k])
	}
}
