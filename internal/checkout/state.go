// Package checkout implements the storefront checkout as an explicit state
// machine: Browsing → SizeQty → Address → Summary → Confirmed, carrying a
// draft order that is validated at every forward step and persisted as a
// Pending order on confirmation.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GTDGit/gtd_shop/internal/view"
)

// State is a checkout step.
type State int

const (
	Browsing State = iota
	SizeQty
	Address
	Summary
	Confirmed
)

var stateNames = map[State]string{
	Browsing:  "browsing",
	SizeQty:   "size_qty",
	Address:   "address",
	Summary:   "summary",
	Confirmed: "confirmed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Page returns the storefront page shown in this state.
func (s State) Page() string {
	switch s {
	case SizeQty:
		return view.PageOrder
	case Address:
		return view.PageUser
	case Summary:
		return view.PagePayment
	case Confirmed:
		return view.PageSuccess
	default:
		return view.PageProducts
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for st, n := range stateNames {
		if n == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown checkout state %q", name)
}

var (
	// ErrProductNotFound is returned when the selected product has no record.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidTransition is returned when an action is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrSessionNotFound is returned for unknown or expired checkout ids.
	ErrSessionNotFound = errors.New("checkout session not found")
)

// ValidationError is a rule violation the shopper can fix; the state does not advance.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
