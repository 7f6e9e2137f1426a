package trade

import (
	"errors"

	"github.com/gravitas-games/signshop/internal/shop"
)

// Kind classifies why an interaction was rejected.
type Kind int

const (
	KindNone Kind = iota
	KindConfiguration
	KindStructural
	KindPermission
	KindResource
	// KindInternal covers collaborator failures such as an unreachable wallet store.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindStructural:
		return "structural"
	case KindPermission:
		return "permission"
	case KindResource:
		return "resource"
	case KindInternal:
		return "internal"
	default:
		return "none"
	}
}

var (
	ErrNoFixture    = errors.New("trade: no item frame found")
	ErrFixtureEmpty = errors.New("trade: item frame empty")
	ErrFixtureBound = errors.New("trade: item frame already used for another shop")
	// ErrShopInvalid wraps the validation error of the shop.
	ErrShopInvalid = errors.New("trade: shop invalid")

	ErrCreateDenied = errors.New("trade: create denied")
	ErrUseDenied    = errors.New("trade: use denied")
	ErrModifyDenied = errors.New("trade: modify denied")

	ErrNoBuyPrice        = errors.New("trade: shop has no buy price")
	ErrItemMismatch      = errors.New("trade: held item differs from shop item")
	ErrNotEnoughItems    = errors.New("trade: not enough items")
	ErrOwnerFunds        = errors.New("trade: shop owner out of money")
	ErrStockFull         = errors.New("trade: shop stock full")
	ErrOutOfStock        = errors.New("trade: shop stock empty")
	ErrInsufficientFunds = errors.New("trade: insufficient funds")
	ErrInventoryFull     = errors.New("trade: inventory full")

	ErrInternal = errors.New("trade: internal error")
)

var kinds = map[error]Kind{
	ErrNoFixture:         KindStructural,
	ErrFixtureEmpty:      KindStructural,
	ErrFixtureBound:      KindStructural,
	ErrCreateDenied:      KindPermission,
	ErrUseDenied:         KindPermission,
	ErrModifyDenied:      KindPermission,
	ErrNoBuyPrice:        KindConfiguration,
	ErrItemMismatch:      KindResource,
	ErrNotEnoughItems:    KindResource,
	ErrOwnerFunds:        KindResource,
	ErrStockFull:         KindResource,
	ErrOutOfStock:        KindResource,
	ErrInsufficientFunds: KindResource,
	ErrInventoryFull:     KindResource,
	ErrInternal:          KindInternal,
}

// KindOf classifies err. Invalid shops take the kind of their validation error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrShopInvalid) {
		switch shop.KindOf(err) {
		case shop.KindConfiguration:
			return KindConfiguration
		case shop.KindStructural:
			return KindStructural
		}
	}
	for target, kind := range kinds {
		if errors.Is(err, target) {
			return kind
		}
	}
	return KindNone
}
