package shop

import "errors"

// Kind classifies why a shop failed validation.
type Kind int

const (
	KindNone Kind = iota
	// KindConfiguration covers bad sign text.
	KindConfiguration
	// KindStructural covers missing or unusable fixtures and containers.
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindStructural:
		return "structural"
	default:
		return "none"
	}
}

var (
	ErrMissingHeader      = errors.New("sign header missing")
	ErrMissingFixture     = errors.New("item frame missing")
	ErrEmptyFixture       = errors.New("item frame empty")
	ErrDamagedItem        = errors.New("you can not sell or buy damaged items")
	ErrMissingContainer   = errors.New("this shop needs a stock chest, but it was not found")
	ErrDuplicateBuyPrice  = errors.New("buy price specified twice")
	ErrDuplicateSellPrice = errors.New("sell price specified twice")
	ErrDuplicateAmount    = errors.New("amount specified twice")
	ErrNoPrice            = errors.New("no price specified")
	ErrInvalidAmount      = errors.New("amount smaller than 1")
	ErrNumberTooLarge     = errors.New("number on sign is too large")

	// ErrPositionTaken and ErrFixtureTaken are returned by Registry.Add.
	ErrPositionTaken = errors.New("shop: position already bound")
	ErrFixtureTaken  = errors.New("shop: fixture already bound")
)

var kinds = map[error]Kind{
	ErrMissingHeader:      KindConfiguration,
	ErrDuplicateBuyPrice:  KindConfiguration,
	ErrDuplicateSellPrice: KindConfiguration,
	ErrDuplicateAmount:    KindConfiguration,
	ErrNoPrice:            KindConfiguration,
	ErrInvalidAmount:      KindConfiguration,
	ErrNumberTooLarge:     KindConfiguration,
	ErrMissingFixture:     KindStructural,
	ErrEmptyFixture:       KindStructural,
	ErrDamagedItem:        KindStructural,
	ErrMissingContainer:   KindStructural,
}

// KindOf returns the validation kind of err, or KindNone.
func KindOf(err error) Kind {
	for target, kind := range kinds {
		if errors.Is(err, target) {
			return kind
		}
	}
	return KindNone
}
