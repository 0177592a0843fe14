package session

import (
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"

	"github.com/shopspring/decimal"
)

// Supervisor is the name of the person responsible for a session. It can only
// be built from a whitelist of known supervisors.
type Supervisor string

// NewSupervisor validates name against the whitelist (exact match after trimming).
func NewSupervisor(name string, whitelist []string) (Supervisor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &registererror.InvalidIdentityError{Field: "supervisor", Value: name, Reason: "must not be empty"}
	}
	for _, allowed := range whitelist {
		if name == allowed {
			return Supervisor(name), nil
		}
	}
	return "", &registererror.InvalidIdentityError{
		Field:  "supervisor",
		Value:  name,
		Reason: "must be one of " + strings.Join(whitelist, ", "),
	}
}

func (s Supervisor) String() string {
	return string(s)
}

// Identity fixes who runs a session and on which day.
type Identity struct {
	Supervisor Supervisor
	Date       time.Time
}

// NewIdentity validates the supervisor and truncates date to the day.
func NewIdentity(date time.Time, supervisor string, whitelist []string) (Identity, error) {
	if date.IsZero() {
		return Identity{}, &registererror.InvalidIdentityError{Field: "date", Reason: "must be set"}
	}
	s, err := NewSupervisor(supervisor, whitelist)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Supervisor: s, Date: dateutils.Day(date)}, nil
}

// NewCashCount validates a counted cash amount and rounds it to the cent.
func NewCashCount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, &registererror.InvalidIdentityError{
			Field:  "cash",
			Value:  amount.String(),
			Reason: "must not be negative",
		}
	}
	return models.RoundMoney(amount), nil
}
