package selection

import "errors"

var (
	// ErrTransactionActive is returned by Begin while another transaction is open
	ErrTransactionActive = errors.New("selection transaction already active")
	// ErrTransactionDone is returned when a finished transaction is ended again
	ErrTransactionDone = errors.New("selection transaction already finished")

	ErrIndexOutOfRange          = errors.New("selected index out of range")
	ErrInvalidSelectedItem      = errors.New("invalid selected item")
	ErrRangeActionsNotSupported = errors.New("range actions are not supported")
	ErrNilArgument              = errors.New("argument must not be nil")
	ErrMultipleSelectionOnly    = errors.New("operation requires multiple selection mode")
)
