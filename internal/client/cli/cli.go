// Package cli реализует команды консольного клиента страниц.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/inkpage/internal/client/iocli"
	"github.com/iudanet/inkpage/pkg/api"
)

//go:generate moq -out api_mock.go . PageAPI

// PageAPI операции сервера, которые использует клиент
type PageAPI interface {
	Snapshot(ctx context.Context, page string) (*api.SnapshotResponse, error)
	AddShape(ctx context.Context, page string, req api.ShapeRequest) (*api.ShapeResponse, error)
	DeleteShape(ctx context.Context, page string, req api.ShapeRequest) (*api.ShapeResponse, error)
	Fade(ctx context.Context, page string, req api.FadeRequest) error
	Watch(ctx context.Context, page string, since int64, fn func(api.Event) error) error
}

// ErrUsage неверные аргументы команды
var ErrUsage = errors.New("invalid usage")

type Cli struct {
	apiClient PageAPI
	io        iocli.IO
}

func New(apiClient PageAPI, io iocli.IO) *Cli {
	return &Cli{
		apiClient: apiClient,
		io:        io,
	}
}

func PrintUsage(out iocli.IO) {
	out.Println("InkPage Client")
	out.Println()
	out.Println("Usage:")
	out.Println("  inkpage [OPTIONS] COMMAND [FLAGS] PAGE")
	out.Println()
	out.Println("Options:")
	out.Println("  --version                    Show version information")
	out.Println("  --server URL                 Server URL (default: http://localhost:8080)")
	out.Println()
	out.Println("Commands:")
	out.Println("  snapshot PAGE                Show current shapes of a page")
	out.Println("  add -p POINTS [-t -r -g -b -a] PAGE")
	out.Println("                               Add a shape")
	out.Println("  delete -p POINTS [-t] PAGE   Delete the equivalent shape")
	out.Println("  fade [-delta D -cutoff C] PAGE")
	out.Println("                               Reduce opacity of every shape")
	out.Println("  watch [-since N] PAGE        Print page updates until interrupted")
	out.Println()
	out.Println("Examples:")
	out.Println("  inkpage add -p '0,0;10,10' -t 2 -r 255 example.com/blog/post-1")
	out.Println("  inkpage delete -p '0,0;10,10' -t 2 example.com/blog/post-1")
	out.Println("  inkpage fade -delta 0.2 example.com/blog/post-1")
	out.Println("  inkpage --server https://ink.example.com watch example.com/blog/post-1")
}

// formatShape печатает фигуру одной строкой
func formatShape(s api.Shape) string {
	return fmt.Sprintf("#%d t=%g rgb(%d,%d,%d) a=%g points=%s",
		s.ID, s.Thickness, s.R, s.G, s.B, s.A, formatPoints(s.Points))
}

func formatPoints(points [][2]float64) string {
	out := make([]byte, 0, len(points)*8)
	for i, p := range points {
		if i > 0 {
			out = append(out, ';')
		}
		out = fmt.Appendf(out, "%g,%g", p[0], p[1])
	}
	return string(out)
}
