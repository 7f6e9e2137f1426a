package shop

import "github.com/gravitas-games/signshop/internal/permission"

const (
	PermBase       permission.Key = "economy.shop"
	PermBaseAdmin                 = PermBase + ".admin"
	PermBasePlayer                = PermBase + ".player"

	PermAdminCreate  = PermBaseAdmin + ".create"
	PermAdminDestroy = PermBaseAdmin + ".destroy"
	PermAdminUse     = PermBaseAdmin + ".use"

	PermPlayerCreate     = PermBasePlayer + ".create"
	PermPlayerDestroy    = PermBasePlayer + ".destroy"
	PermPlayerDestroyAny = PermPlayerDestroy + ".any"
	PermPlayerUse        = PermBasePlayer + ".use"
)

// RegisterPermissions declares the shop keys with their default levels.
func RegisterPermissions(p *permission.Policy) {
	p.Describe(PermBase, "Shop permissions")
	p.Describe(PermBaseAdmin, "Admin shop permissions")
	p.Describe(PermBasePlayer, "Player shop permissions")

	p.Register(PermAdminUse, permission.LevelTrue, "Allow usage of admin shops")
	p.Register(PermAdminCreate, permission.LevelOp, "Allow creating admin shops")
	p.Register(PermAdminDestroy, permission.LevelOp, "Allow destroying admin shops")

	p.Register(PermPlayerUse, permission.LevelTrue, "Allow usage of player shops")
	p.Register(PermPlayerCreate, permission.LevelTrue, "Allow creating player shops with a stock chest")
	p.Register(PermPlayerDestroy, permission.LevelTrue, "Allow players to destroy their own shops")
	p.Register(PermPlayerDestroyAny, permission.LevelOp, "Allow destroying other players' shops")
}

// CreateKey is the permission needed to create a shop with or without a container.
func CreateKey(withContainer bool) permission.Key {
	if withContainer {
		return PermPlayerCreate
	}
	return PermAdminCreate
}

// UseKey is the permission needed to trade with s.
func (s *Shop) UseKey() permission.Key {
	if s.useContainer {
		return PermPlayerUse
	}
	return PermAdminUse
}
