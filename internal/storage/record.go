package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9-]*$`)

// ValidatingSpec is anything that can validate its own contents after being
// loaded from disk.
type ValidatingSpec interface {
	Validate() error
}

// Record is the on-disk envelope around a stored spec.
type Record[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func (r *Record[T]) Validate() error {
	el := errors.NewErrorList()

	if r.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if r.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !identifierPattern.MatchString(r.Identifier) {
		el.Add(fmt.Errorf("id must be alphanumeric"))
	}

	el.Add(r.Spec.Validate())

	return el.Err()
}
