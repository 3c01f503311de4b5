package sync

import "errors"

var ErrNotOperator = errors.New("only operators can trigger a roster sync")
