package permission

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/config"
	"github.com/gravitas-games/signshop/internal/world"
)

func TestDefaultLevels(t *testing.T) {
	p := NewPolicy()
	p.Register("shop.use", LevelTrue, "use shops")
	p.Register("shop.create", LevelOp, "create shops")
	p.Register("shop.secret", LevelFalse, "nobody")

	player, op := uuid.New(), uuid.New()
	p.SetOperator(op, true)
	at := world.BlockPos{}

	if !p.Allowed(player, at, "shop.use") {
		t.Fatalf("TRUE level must allow everybody")
	}
	if p.Allowed(player, at, "shop.create") || !p.Allowed(op, at, "shop.create") {
		t.Fatalf("OP level must allow operators only")
	}
	if p.Allowed(op, at, "shop.secret") {
		t.Fatalf("FALSE level must deny operators too")
	}
	if p.Allowed(player, at, "unregistered") || !p.Allowed(op, at, "unregistered") {
		t.Fatalf("unregistered keys fall back to operator status")
	}
}

func TestOverridesApplyToChildren(t *testing.T) {
	p := NewPolicy()
	p.Register("economy.shop.admin.create", LevelOp, "")
	p.Register("economy.shop.player.use", LevelTrue, "")
	id := uuid.New()
	p.Grant(id, "economy.shop.admin")
	p.Deny(id, "economy.shop.player")

	if !p.Allowed(id, world.BlockPos{}, "economy.shop.admin.create") {
		t.Fatalf("grant on parent must allow child")
	}
	if p.Allowed(id, world.BlockPos{}, "economy.shop.player.use") {
		t.Fatalf("deny on parent must forbid child")
	}
}

func TestFromConfig(t *testing.T) {
	op := uuid.New()
	cfg := config.PermissionsConfig{
		Operators: []string{op.String()},
		Denies:    map[string][]string{op.String(): {"economy.shop.admin.destroy"}},
	}
	p, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	p.Register("economy.shop.admin.create", LevelOp, "")
	p.Register("economy.shop.admin.destroy", LevelOp, "")
	if !p.Allowed(op, world.BlockPos{}, "economy.shop.admin.create") {
		t.Fatalf("expected operator to create")
	}
	if p.Allowed(op, world.BlockPos{}, "economy.shop.admin.destroy") {
		t.Fatalf("expected configured deny to win")
	}

	if _, err := FromConfig(config.PermissionsConfig{Operators: []string{"not-a-uuid"}}); err == nil {
		t.Fatalf("expected error for bad operator id")
	}
}

func TestKeyParent(t *testing.T) {
	if Key("a.b.c").Parent() != "a.b" || Key("a").Parent() != "" {
		t.Fatalf("unexpected parents")
	}
}
