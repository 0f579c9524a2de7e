package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/scrumsquad/feedback-board/internal/feed"
	"github.com/scrumsquad/feedback-board/internal/notify"
	"github.com/scrumsquad/feedback-board/internal/render"
)

// errReported marks failures already shown to the user as a notice.
var errReported = errors.New("reported")

// controller reports through the notification center, whose toaster
// echoes every notice to errOut.
func (a *app) controller() *feed.Controller {
	return feed.NewController(a.api, a.center, nil, a.log)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "signup":
		return a.signup(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "list":
		return a.list(ctx, args)
	case "post":
		return a.post(ctx, args)
	case "upvote":
		return a.upvote(ctx, args)
	case "updates":
		return a.updates(ctx, args)
	case "add-update":
		return a.addUpdate(ctx, args)
	case "all-updates":
		return a.allUpdates(ctx)
	case "summary":
		return a.summary(ctx)
	case "notifications":
		return a.notifications(args)
	case "watch":
		return a.watch(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <username> <password>")
	}
	user, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.api.SaveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", user.DisplayName, user.Role)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: signup <username> <password> [display name]")
	}
	user, err := a.api.Signup(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	if err := a.api.SaveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "welcome, %s\n", user.DisplayName)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	return a.api.SaveSession()
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.api.WhoAmI(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "guest")
		return nil
	}
	fmt.Fprintf(a.out, "%s  handle=%s  role=%s  admin=%t\n", user.DisplayName, user.Handle, user.Role, user.IsAdmin)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	order := fs.String("sort", string(feed.SortRecent), "recent, upvotes, date or oldest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := a.controller()
	if err := c.Init(ctx); err != nil {
		return errReported
	}
	if parsed := feed.ParseSortOrder(*order); parsed != feed.SortRecent {
		c.ChangeSort(parsed)
	}
	return render.WriteText(a.out, c.Feed())
}

func (a *app) post(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	var d feed.Draft
	fs.StringVar(&d.Issue, "issue", "", "what is wrong")
	fs.StringVar(&d.Impact, "impact", "", "who it affects and how")
	fs.StringVar(&d.Suggestion, "suggestion", "", "proposed fix")
	fs.StringVar(&d.Theme, "theme", "", "category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := a.controller()
	if err := c.Init(ctx); err != nil {
		return errReported
	}
	if err := c.Submit(ctx, d); err != nil {
		return errReported
	}
	return render.WriteText(a.out, c.Feed())
}

func (a *app) upvote(ctx context.Context, args []string) error {
	id, err := postIDArg(args)
	if err != nil {
		return err
	}
	c := a.controller()
	if err := c.Init(ctx); err != nil {
		return errReported
	}
	if err := c.Upvote(ctx, id); err != nil {
		return errReported
	}
	return render.WriteText(a.out, c.Feed())
}

func (a *app) updates(ctx context.Context, args []string) error {
	id, err := postIDArg(args)
	if err != nil {
		return err
	}
	c := a.controller()
	if err := c.Init(ctx); err != nil {
		return errReported
	}
	if err := c.ToggleUpdates(ctx, id); err != nil {
		return errReported
	}
	return writeCard(a, c.Feed(), id)
}

func (a *app) addUpdate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: add-update <post id> <text>")
	}
	id, err := postIDArg(args[:1])
	if err != nil {
		return err
	}
	c := a.controller()
	if err := c.Init(ctx); err != nil {
		return errReported
	}
	if err := c.ToggleUpdates(ctx, id); err != nil {
		return errReported
	}
	if err := c.AddUpdate(ctx, id, strings.Join(args[1:], " ")); err != nil {
		return errReported
	}
	return writeCard(a, c.Feed(), id)
}

func (a *app) allUpdates(ctx context.Context) error {
	updates, err := a.api.ListAllUpdates(ctx)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		fmt.Fprintln(a.out, render.NoUpdates)
		return nil
	}
	for _, u := range updates {
		fmt.Fprintf(a.out, "#%d  %s  [%s]  %s\n", u.PostID, u.Timestamp.Local().Format("Jan 2, 2006 15:04"), u.AuthorRole, u.Content)
	}
	return nil
}

func (a *app) summary(ctx context.Context) error {
	report, err := a.api.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "total: %d\n\nby theme:\n", report.TotalCount)
	for _, item := range report.CountsPerTheme {
		fmt.Fprintf(a.out, "  %-20s %d\n", item.Key, item.Count)
	}
	fmt.Fprintln(a.out, "\nby day:")
	for _, item := range report.CountsPerDay {
		fmt.Fprintf(a.out, "  %-20s %d\n", item.Key, item.Count)
	}
	return nil
}

func (a *app) notifications(args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	read := fs.String("read", "", "mark one notification read by id")
	dismiss := fs.String("dismiss", "", "remove one notification by id")
	readAll := fs.Bool("read-all", false, "mark every notification read")
	clearAll := fs.Bool("clear", false, "remove every notification")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch {
	case *clearAll:
		a.center.Clear()
	case *readAll:
		a.center.MarkAllRead()
	case *dismiss != "":
		if !a.hasNotification(*dismiss) {
			return fmt.Errorf("no notification %q", *dismiss)
		}
		a.center.Dismiss(*dismiss)
	case *read != "":
		if !a.hasNotification(*read) {
			return fmt.Errorf("no notification %q", *read)
		}
		a.center.MarkRead(*read)
	}
	return notify.WritePanel(a.out, a.center.Items())
}

func (a *app) hasNotification(id string) bool {
	for _, e := range a.center.Items() {
		if e.ID == id {
			return true
		}
	}
	return false
}

func postIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a single post id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", args[0])
	}
	return id, nil
}

func writeCard(a *app, f render.Feed, id int64) error {
	for _, card := range f.Cards {
		if card.PostID == id {
			return render.WriteText(a.out, render.Feed{Cards: []render.Card{card}})
		}
	}
	return fmt.Errorf("post %d not found", id)
}
