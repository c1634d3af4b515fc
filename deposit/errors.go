package deposit

import (
	"fmt"

	"github.com/warp/deposit-engine/generic"
)

// UnknownBankError is returned when a deposit references a bank that is not
// in the known bank set. The advisor treats it as fatal.
type UnknownBankError struct {
	DepositID   string
	DepositName string
	Bank        string
}

func (e *UnknownBankError) Error() string {
	return fmt.Sprintf("unknown bank %q in deposit %q (%s)", e.Bank, e.DepositName, e.DepositID)
}

func (e *UnknownBankError) Unwrap() error {
	return generic.ErrBankNotFound
}

// ValidationError reports the first field rule a record breaks.
type ValidationError struct {
	Record  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Record, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return generic.ErrInvalidRecord
}
