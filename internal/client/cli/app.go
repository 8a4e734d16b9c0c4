// Package cli implements the files command-line client: one command per
// invocation, results printed as JSON.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/api"
)

// Files is the server API used by the commands.
type Files interface {
	PostFile(ctx context.Context, req *api.PostFileRequest) (*api.PostFileResponse, error)
	GetFile(ctx context.Context, id string) (*api.File, error)
	ListFiles(ctx context.Context, parentID, page string) ([]*api.File, error)
	ListDeadJobs(ctx context.Context, limit int) ([]*api.DeadJob, error)
	PostUser(ctx context.Context, email, password string) (*api.PostUserResponse, error)
	Login(ctx context.Context, email, password string) (string, error)
	Health(ctx context.Context) (string, error)
}

var ErrUsage = errors.New("usage")

const usage = `usage: cli [-a addr] [-k token] [-c config.json] <command> [args]

commands:
  register <email>
  login    <email>
  mkdir  [-parent id] [-public] <name>
  upload [-parent id] [-public] [-type file|image] [-name name] <path>
  get    <id>
  ls     [-parent id] [-page n]
  dead   [-limit n]
  health`

type App struct {
	files    Files
	out      io.Writer
	timeout  time.Duration
	readFile func(string) ([]byte, error)
	password func() (string, error)
}

func NewApp(files Files, out io.Writer, timeout time.Duration) *App {
	return &App{
		files:    files,
		out:      out,
		timeout:  timeout,
		readFile: os.ReadFile,
		password: func() (string, error) { return GetPassword(os.Stderr, os.Stdin) },
	}
}

// Usage writes the command summary.
func (a *App) Usage(w io.Writer) {
	fmt.Fprintln(w, usage)
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "mkdir":
		return a.mkdir(ctx, rest)
	case "upload":
		return a.upload(ctx, rest)
	case "get":
		return a.get(ctx, rest)
	case "ls", "list":
		return a.list(ctx, rest)
	case "dead":
		return a.dead(ctx, rest)
	case "health":
		st, err := a.files.Health(ctx)
		if err != nil {
			return err
		}
		return a.print(map[string]string{"status": st})
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) mkdir(ctx context.Context, args []string) error {
	fs := newFlagSet("mkdir")
	parent := fs.String("parent", "", "parent folder id")
	public := fs.Bool("public", false, "make the folder public")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return fmt.Errorf("%w: mkdir [-parent id] [-public] <name>", ErrUsage)
	}

	resp, err := a.files.PostFile(ctx, &api.PostFileRequest{
		Name:     fs.Arg(0),
		Type:     "folder",
		ParentID: *parent,
		IsPublic: *public,
	})
	if err != nil {
		return err
	}
	return a.print(resp)
}

// detectType reports "image" for payloads that sniff as images.
func detectType(data []byte) string {
	if strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "image"
	}
	return "file"
}

func (a *App) upload(ctx context.Context, args []string) error {
	fs := newFlagSet("upload")
	parent := fs.String("parent", "", "parent folder id")
	public := fs.Bool("public", false, "make the file public")
	typ := fs.String("type", "", "file or image (detected when empty)")
	name := fs.String("name", "", "name to store (defaults to the base name of path)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return fmt.Errorf("%w: upload [-parent id] [-public] [-type file|image] [-name name] <path>", ErrUsage)
	}

	path := fs.Arg(0)
	data, err := a.readFile(path)
	if err != nil {
		return err
	}

	if *typ == "" {
		*typ = detectType(data)
	}
	if *name == "" {
		*name = filepath.Base(path)
	}

	resp, err := a.files.PostFile(ctx, &api.PostFileRequest{
		Name:     *name,
		Type:     *typ,
		ParentID: *parent,
		IsPublic: *public,
		Data:     data,
	})
	if err != nil {
		return err
	}
	return a.print(resp)
}

func (a *App) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get <id>", ErrUsage)
	}
	f, err := a.files.GetFile(ctx, args[0])
	if err != nil {
		return err
	}
	return a.print(f)
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := newFlagSet("ls")
	parent := fs.String("parent", "", "parent folder id (root when empty)")
	page := fs.String("page", "0", "page number")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: ls [-parent id] [-page n]", ErrUsage)
	}

	files, err := a.files.ListFiles(ctx, *parent, *page)
	if err != nil {
		return err
	}
	return a.print(files)
}

func (a *App) dead(ctx context.Context, args []string) error {
	fs := newFlagSet("dead")
	limit := fs.Int("limit", 0, "maximum jobs to show")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: dead [-limit n]", ErrUsage)
	}

	jobs, err := a.files.ListDeadJobs(ctx, *limit)
	if err != nil {
		return err
	}
	return a.print(jobs)
}

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: register <email>", ErrUsage)
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	resp, err := a.files.PostUser(ctx, args[0], password)
	if err != nil {
		return err
	}
	return a.print(resp)
}

// login prints the access token to pass with -k on later calls.
func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: login <email>", ErrUsage)
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	token, err := a.files.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	return a.print(api.LoginResponse{Token: token})
}
