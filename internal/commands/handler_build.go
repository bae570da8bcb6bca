package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-outbreak/internal/projects"
)

func (d *Dispatcher) handleBuild(ctx context.Context, req *Request) (string, error) {
	if len(req.Args) == 0 {
		return "You can build: " + strings.Join(projects.Catalog(), ", "), nil
	}

	proj, err := d.projects.Start(req.Player, req.Args[0], req.Now)
	if err != nil {
		return "", err
	}

	eta := proj.DoneAt.Sub(req.Now).Round(time.Second)
	return fmt.Sprintf("Work begins on the %s. Done in %s.", proj.Structure, eta), nil
}
