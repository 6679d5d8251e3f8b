package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/ui"
)

// session is one terminal intent against the configured library.
type session struct {
	lib      *internal.Library
	disp     *ui.Dispatcher
	notifier *ui.Notifier
	term     *ui.Terminal
}

func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	// Keep stdout for the list; only problems reach stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	lib, err := internal.OpenLibrary(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	notifier := ui.NewNotifier(cfg.UI.NoticeTTL, nil)
	return &session{
		lib:      lib,
		disp:     ui.NewDispatcher(lib.Store, notifier, logger),
		notifier: notifier,
		term:     ui.NewTerminal(os.Stdin, os.Stdout),
	}, nil
}

func (s *session) Close() error { return s.lib.Close() }

// dispatch runs in, prints its notices, and maps failures to a non-zero exit.
func (s *session) dispatch(ctx context.Context, in ui.Intent) (ui.Result, error) {
	res, err := s.disp.Dispatch(ctx, in)
	s.term.RenderNotices(s.notifier.Take())
	if err != nil && !errors.Is(err, apperr.ErrConfirmationRequired) {
		return res, cli.Exit("", 1)
	}
	return res, err
}

func (s *session) show(ctx context.Context, f models.Filter) {
	s.term.RenderPage(ui.BuildPage(s.lib.Store.Filter(ctx, f), f))
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List books",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Status filter (all, to-read, reading, completed)",
				Value:   models.FilterAllToken,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := models.ParseFilter(cmd.String("filter"))
			if err != nil {
				return err
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			s.show(ctx, f)
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a book",
		ArgsUsage: "<title> <author>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("usage: folio add <title> <author>")
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			_, err = s.dispatch(ctx, ui.Intent{
				Action: ui.ActionAdd,
				Title:  cmd.Args().Get(0),
				Author: cmd.Args().Get(1),
			})
			return err
		},
	}
}

func advanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "advance",
		Usage:     "Move a book to its next status",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("usage: folio advance <id>")
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			_, err = s.dispatch(ctx, ui.Intent{Action: ui.ActionAdvance, ID: cmd.Args().First()})
			return err
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a book after confirmation",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("usage: folio delete [--yes] <id>")
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			in := ui.Intent{Action: ui.ActionDelete, ID: cmd.Args().First(), Confirmed: cmd.Bool("yes")}
			res, err := s.dispatch(ctx, in)
			if !errors.Is(err, apperr.ErrConfirmationRequired) {
				return err
			}
			if !s.term.Confirm(*res.Pending) {
				fmt.Println("Cancelled")
				return nil
			}
			in.Confirmed = true
			_, err = s.dispatch(ctx, in)
			return err
		},
	}
}

func slotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "List saved reading lists in the storage backend",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			keys, err := s.lib.Slots()
			if err != nil {
				return err
			}
			s.term.RenderSlots(keys, s.lib.Store.Key())
			return nil
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Remove every book and delete the saved list",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			question := fmt.Sprintf("Remove all %d books from %q?", s.lib.Store.Len(), s.lib.Store.Key())
			if !cmd.Bool("yes") && !s.term.Ask(question) {
				fmt.Println("Cancelled")
				return nil
			}
			if err := s.lib.Store.Reset(ctx); err != nil {
				return err
			}
			fmt.Println("Reading list cleared")
			return nil
		},
	}
}
