package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	pageclient "github.com/iudanet/inkpage/internal/client/api"
	"github.com/iudanet/inkpage/pkg/api"
)

// Run выполняет команду клиента
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "snapshot":
		return c.runSnapshot(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "fade":
		return c.runFade(ctx, args)
	case "watch":
		return c.runWatch(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

// newFlagSet создает набор флагов команды, ошибки разбора возвращаются вызывающему
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parsePage разбирает флаги и возвращает единственный позиционный аргумент
func parsePage(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s expects exactly one page key", ErrUsage, fs.Name())
	}
	return fs.Arg(0), nil
}

func (c *Cli) runSnapshot(ctx context.Context, args []string) error {
	fs := newFlagSet("snapshot")
	page, err := parsePage(fs, args)
	if err != nil {
		return err
	}

	snap, err := c.apiClient.Snapshot(ctx, page)
	if err != nil {
		return err
	}

	if snap.First {
		c.io.Printf("Page %s is empty (never written)\n", page)
	} else {
		c.io.Printf("Page %s: %d shape(s), next id %d\n", page, len(snap.Shapes), snap.NextID)
	}
	for _, s := range snap.Shapes {
		c.io.Println(formatShape(s))
	}
	c.io.Printf("Watch from: %d\n", snap.NextUpdate)
	return nil
}

// shapeFlags флаги фигуры. Пустые значения не отправляются,
// сервер подставляет значения по умолчанию.
type shapeFlags struct {
	p, t, r, g, b, a string
}

func (f *shapeFlags) register(fs *flag.FlagSet, withColor bool) {
	fs.StringVar(&f.p, "p", "", "points as x1,y1;x2,y2")
	fs.StringVar(&f.t, "t", "", "line thickness")
	if withColor {
		fs.StringVar(&f.r, "r", "", "red channel 0-255")
		fs.StringVar(&f.g, "g", "", "green channel 0-255")
		fs.StringVar(&f.b, "b", "", "blue channel 0-255")
		fs.StringVar(&f.a, "a", "", "opacity 0-1")
	}
}

func (f *shapeFlags) request() (api.ShapeRequest, error) {
	if f.p == "" {
		return api.ShapeRequest{}, fmt.Errorf("%w: -p is required", ErrUsage)
	}
	return api.ShapeRequest{
		P: api.Lenient(f.p),
		T: api.Lenient(f.t),
		R: api.Lenient(f.r),
		G: api.Lenient(f.g),
		B: api.Lenient(f.b),
		A: api.Lenient(f.a),
	}, nil
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	var flags shapeFlags
	flags.register(fs, true)
	page, err := parsePage(fs, args)
	if err != nil {
		return err
	}
	req, err := flags.request()
	if err != nil {
		return err
	}

	resp, err := c.apiClient.AddShape(ctx, page, req)
	if err != nil {
		return err
	}

	if resp.Status == "duplicate" {
		c.io.Println("Shape already exists, nothing added")
		return nil
	}
	c.io.Printf("Added %s\n", formatShape(resp.Shape))
	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	var flags shapeFlags
	flags.register(fs, false)
	page, err := parsePage(fs, args)
	if err != nil {
		return err
	}
	req, err := flags.request()
	if err != nil {
		return err
	}

	resp, err := c.apiClient.DeleteShape(ctx, page, req)
	if err != nil {
		return err
	}

	if resp.Status == "not_found" {
		c.io.Println("No matching shape, nothing deleted")
		return nil
	}
	c.io.Printf("Deleted %s\n", formatShape(resp.Shape))
	return nil
}

func (c *Cli) runFade(ctx context.Context, args []string) error {
	fs := newFlagSet("fade")
	delta := fs.Float64("delta", 0.05, "opacity to subtract")
	cutoff := fs.Float64("cutoff", 0.1, "remove shapes whose opacity drops below")
	page, err := parsePage(fs, args)
	if err != nil {
		return err
	}
	if *delta <= 0 {
		return fmt.Errorf("%w: -delta must be positive", ErrUsage)
	}

	if err := c.apiClient.Fade(ctx, page, api.FadeRequest{Delta: *delta, Cutoff: *cutoff}); err != nil {
		return err
	}
	c.io.Printf("Faded page %s by %g\n", page, *delta)
	return nil
}

// runWatch печатает события до отмены ctx. Без -since начинает с текущего снимка.
func (c *Cli) runWatch(ctx context.Context, args []string) error {
	fs := newFlagSet("watch")
	since := fs.Int64("since", -1, "watermark to resume from")
	page, err := parsePage(fs, args)
	if err != nil {
		return err
	}

	if *since < 0 {
		snap, err := c.apiClient.Snapshot(ctx, page)
		if err != nil {
			return err
		}
		*since = snap.NextUpdate
	}

	c.io.Printf("Watching %s from %d\n", page, *since)
	for {
		err = c.apiClient.Watch(ctx, page, *since, func(e api.Event) error {
			c.io.Printf("[%d] %s %s\n", e.Time, e.Type, formatShape(e.Shape))
			return nil
		})
		if !errors.Is(err, pageclient.ErrHistoryTruncated) {
			break
		}

		// Пропущенные события не восстановить, начинаем с нового снимка
		snap, err := c.apiClient.Snapshot(ctx, page)
		if err != nil {
			return err
		}
		*since = snap.NextUpdate
		c.io.Printf("History truncated, %d shape(s) on page now, watching from %d\n", len(snap.Shapes), *since)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
