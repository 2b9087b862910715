// Package source produces the account records a migration run operates on,
// either from a delimited file or from the source cluster's directory
// service.
package source

import (
	"context"

	"github.com/openmailtools/zmigrate/internal/account"
)

// Loader produces the account list for a run.
type Loader interface {
	Load(ctx context.Context) ([]*account.Record, error)
}

// Directory attribute names carried by mail accounts.
const (
	attrDeliveryAddress = "zimbraMailDeliveryAddress"
	attrMailHost        = "zimbraMailHost"
)
