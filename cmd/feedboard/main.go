// Command feedboard is a terminal client for the feedback board API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/client"
	"github.com/scrumsquad/feedback-board/internal/client/localstore"
	"github.com/scrumsquad/feedback-board/internal/notify"
	"github.com/scrumsquad/feedback-board/pkg/logger"
)

const usage = `usage: feedboard [flags] <command> [args]

commands:
  login <username> <password>
  signup <username> <password> [display name]
  logout
  whoami
  list [-sort recent|upvotes|date|oldest]
  post -issue <text> -impact <text> -suggestion <text> [-theme <name>]
  upvote <post id>
  updates <post id>
  add-update <post id> <text>
  all-updates
  summary
  notifications [-read <id>] [-dismiss <id>] [-read-all] [-clear]
  watch [-group <name>]
`

// app is one browsing context: an API client, its storage and the
// notification center sharing that storage.
type app struct {
	api     *client.Client
	center  *notify.Center
	toaster *notify.Toaster
	out     io.Writer
	errOut  io.Writer
	log     zerolog.Logger
}

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("feedboard", flag.ExitOnError)
	server := fs.String("server", envOr("FEEDBOARD_URL", "http://localhost:8000"), "API root")
	profile := fs.String("profile", envOr("FEEDBOARD_PROFILE", defaultProfile()), "directory holding session and notifications")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage); fs.PrintDefaults() }
	_ = fs.Parse(os.Args[1:])

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Output: os.Stderr})

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(*server, *profile, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "feedboard:", err)
		os.Exit(1)
	}
	if err := a.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "feedboard:", err)
		}
		os.Exit(1)
	}
}

func newApp(server, profile string, log zerolog.Logger) (*app, error) {
	storage, err := localstore.NewFile(filepath.Join(profile, "storage.json"))
	if err != nil {
		return nil, err
	}
	api, err := client.New(server, client.WithStorage(storage))
	if err != nil {
		return nil, err
	}
	if err := api.RestoreSession(); err != nil {
		log.Debug().Err(err).Msg("ignoring stored session")
	}
	a := &app{
		api:    api,
		out:    os.Stdout,
		errOut: os.Stderr,
		log:    log,
	}
	a.toaster = notify.NewToaster(notify.ToastWriter(a.errOut))
	a.center = a.newCenter(nil)
	return a, nil
}

// newCenter builds the notification center over the profile storage. Toasts
// go to errOut. port may be nil when no sibling clients are joined.
func (a *app) newCenter(port notify.Port) *notify.Center {
	opts := []notify.Option{notify.WithToaster(a.toaster), notify.WithLogger(a.log)}
	if port != nil {
		opts = append(opts, notify.WithPort(port))
	}
	return notify.NewCenter(a.api.Storage(), opts...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultProfile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".feedboard"
	}
	return filepath.Join(home, ".feedboard")
}
