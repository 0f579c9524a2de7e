package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/scrumsquad/feedback-board/internal/notify"
	"github.com/scrumsquad/feedback-board/internal/render"
)

// watch keeps the feed on screen and re-renders it whenever the server
// announces a change. Notifications are synced with other watchers in the
// same group.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	group := fs.String("group", "feed", "broadcast group shared with sibling clients")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wsURL, err := notify.WebsocketURL(a.api.BaseURL(), *group)
	if err != nil {
		return err
	}
	port, err := notify.DialWS(ctx, wsURL, a.log)
	if err != nil {
		return err
	}
	defer port.Close()

	a.center.Close()
	a.center = a.newCenter(port)
	defer a.center.Close()

	// siblings in the group change the shared list; keep the badge current
	stopBadge := a.center.Listen(func(items []notify.Entry) {
		_ = notify.WriteBadge(a.errOut, items)
	})
	defer stopBadge()

	c := a.controller()
	if err := c.Init(ctx); err != nil {
		return errReported
	}
	if err := render.WriteText(a.out, c.Feed()); err != nil {
		return err
	}

	changed := make(chan struct{}, 1)
	port.Subscribe(func(m notify.Message) {
		if !m.IsFeedChange() {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-port.Done():
			return fmt.Errorf("connection to %s closed", wsURL)
		case <-changed:
			if err := c.Refresh(ctx); err != nil {
				continue
			}
			fmt.Fprintln(a.out)
			if err := render.WriteText(a.out, c.Feed()); err != nil {
				return err
			}
		}
	}
}
