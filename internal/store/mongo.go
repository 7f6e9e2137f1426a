package store

import (
	"context"
	"fmt"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/gravitas-games/signshop/internal/shop"
)

// Collection is the part of a Mongo collection the shop store uses.
type Collection interface {
	Find(selector interface{}) Query
	UpsertId(id interface{}, change interface{}) error
	RemoveId(id interface{}) error
}

// Query is a pending Mongo query.
type Query interface {
	All(result interface{}) error
}

type mongoCollection struct {
	collection *mgo.Collection
}

func (mc mongoCollection) Find(selector interface{}) Query {
	return mongoQuery{query: mc.collection.Find(selector)}
}

func (mc mongoCollection) UpsertId(id interface{}, change interface{}) error {
	_, err := mc.collection.UpsertId(id, change)
	return err
}

func (mc mongoCollection) RemoveId(id interface{}) error {
	return mc.collection.RemoveId(id)
}

type mongoQuery struct {
	query *mgo.Query
}

func (mq mongoQuery) All(result interface{}) error {
	return mq.query.All(result)
}

type mongoDoc struct {
	ID            string `bson:"_id"`
	shop.Snapshot `bson:",inline"`
}

// Mongo stores one document per shop keyed by sign position.
type Mongo struct {
	c Collection
}

// NewMongo stores shops in c.
func NewMongo(c Collection) *Mongo {
	return &Mongo{c: c}
}

// DialMongo connects to url and returns a store on database.collection and
// the function closing the session.
func DialMongo(url, database, collection string) (*Mongo, func(), error) {
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	session.SetMode(mgo.Monotonic, true)
	c := mongoCollection{collection: session.DB(database).C(collection)}
	return NewMongo(c), session.Close, nil
}

// Load reads every shop document.
func (m *Mongo) Load(_ context.Context) ([]shop.Snapshot, error) {
	var docs []mongoDoc
	if err := m.c.Find(nil).All(&docs); err != nil {
		return nil, fmt.Errorf("failed to load shops: %w", err)
	}
	out := make([]shop.Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Snapshot)
	}
	return out, nil
}

// Save upserts every shop and removes documents of shops that are gone.
func (m *Mongo) Save(_ context.Context, shops []shop.Snapshot) error {
	var existing []mongoDoc
	if err := m.c.Find(bson.M{}).All(&existing); err != nil {
		return fmt.Errorf("failed to list stored shops: %w", err)
	}
	keep := make(map[string]bool, len(shops))
	for _, sn := range shops {
		id := sn.Pos.Key()
		keep[id] = true
		if err := m.c.UpsertId(id, mongoDoc{ID: id, Snapshot: sn}); err != nil {
			return fmt.Errorf("failed to store shop %s: %w", id, err)
		}
	}
	for _, d := range existing {
		if keep[d.ID] {
			continue
		}
		if err := m.c.RemoveId(d.ID); err != nil {
			return fmt.Errorf("failed to remove shop %s: %w", d.ID, err)
		}
	}
	return nil
}
