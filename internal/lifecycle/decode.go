package lifecycle

import (
	"strings"

	"github.com/lzjever/training-workspaces/internal/core"
)

// Decoder pulls typed values out of a property bag and remembers every
// required key that was absent, so validation reports all of them at once.
type Decoder struct {
	props   Properties
	missing []string
	invalid []string
}

func NewDecoder(props Properties) *Decoder {
	return &Decoder{props: props}
}

func (d *Decoder) Require(key string) string {
	v := strings.TrimSpace(d.props[key])
	if v == "" {
		d.missing = append(d.missing, key)
	}
	return v
}

func (d *Decoder) Optional(key, def string) string {
	if v := strings.TrimSpace(d.props[key]); v != "" {
		return v
	}
	return def
}

// Invalid records that key was present but unusable.
func (d *Decoder) Invalid(key string) {
	d.invalid = append(d.invalid, key)
}

// Err returns a *core.ValidationError carrying reason when any required
// key was missing or invalid.
func (d *Decoder) Err(reason string) error {
	if len(d.missing) == 0 && len(d.invalid) == 0 {
		return nil
	}
	return &core.ValidationError{
		Reason:  reason,
		Missing: append([]string(nil), d.missing...),
		Invalid: append([]string(nil), d.invalid...),
	}
}
