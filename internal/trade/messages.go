package trade

// Message keys. They double as the English text.
const (
	msgNoFixture     = "No item frame found"
	msgFixtureEmpty  = "Item frame empty"
	msgFixtureBound  = "Item frame already used for another shop!"
	msgNoCreateAdmin = "You are not allowed to create admin shops!"
	msgNoCreateOwn   = "You are not allowed to create your own shops!"
	msgShopInvalid   = "Shop invalid: %s"
	msgShopRemoved   = "Shop invalid, removed: %s"
	msgCreatedStock  = "Created shop with stock!"
	msgCreated       = "Created shop!"
	msgNoUseAdmin    = "You are not allowed to use admin shops!"
	msgNoUseOwned    = "You are not allowed to use player shops!"
	msgModifyDenied  = "You are not allowed to modify this shop!"
	msgDestroyed     = "Shop destroyed"
	msgOnlyBuys      = "This shop does not sell anything, it only buys %s"
	msgDataMismatch  = "Meta-data of your items is not equal to the shop item"
	msgNotEnough     = "You do not have enough %s"
	msgOwnerBroke    = "Shop owner out of money"
	msgStockFull     = "Shop has not enough space!"
	msgStockEmpty    = "Shop stock is empty"
	msgNoFunds       = "You do not have enough %s in your wallet"
	msgInventoryFull = "You do not have enough room in your inventory"
	msgSold          = "Sold %d x %s for %s (wallet: %s)"
	msgBought        = "Bought %d x %s for %s (wallet: %s)"
	msgFixtureOwner  = "Owner: %s, item: %s"
	msgInternal      = "The shop could not complete the transaction, please try again later"
)
