package integrators

import (
	"fmt"

	"github.com/ultrafast-lab/demag/internal/demag"
)

// Names lists the selectable integrators.
func Names() []string {
	return []string{"rk4", "rk45"}
}

// New constructs an integrator by name. "rk45" is the adaptive default;
// "rk4" takes fixed steps without error control.
func New(name string) (demag.Integrator, error) {
	switch name {
	case "rk45":
		return NewRK45(), nil
	case "rk4":
		return NewRK4(), nil
	default:
		return nil, &demag.InvalidParameterError{
			Field:  "integrator",
			Reason: fmt.Sprintf("unknown integrator %q (supported: %v)", name, Names()),
		}
	}
}
