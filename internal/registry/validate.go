package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
)

// Validate builds one box of every registered type and checks that it
// reports the type id it was registered under and is not already attached.
// Constructors that panic are reported as errors.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, id := range r.Types() {
		if err := r.validateOne(id); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}
	logger.Debug("Registry validation successful.", "types", len(r.entries))
	return nil
}

func (r *Registry) validateOne(id string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("box type '%s': constructor panicked: %v", id, p)
		}
	}()

	b := r.entries[id].New()
	switch {
	case b == nil:
		return fmt.Errorf("box type '%s': constructor returned nil", id)
	case b.TypeID() != id:
		return fmt.Errorf("box type '%s': constructor builds boxes of type '%s'", id, b.TypeID())
	case b.Attached():
		return fmt.Errorf("box type '%s': constructor returned an attached box", id)
	}
	return nil
}
