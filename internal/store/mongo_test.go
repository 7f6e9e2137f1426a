package store

import (
	"context"
	"errors"
	"sort"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/gravitas-games/signshop/internal/shop"
)

func Test(t *testing.T) { TestingT(t) }

type fakeCollection struct {
	docs map[string]mongoDoc
	err  error
}

func (fc *fakeCollection) Find(selector interface{}) Query {
	return fakeQuery{fc: fc}
}

func (fc *fakeCollection) UpsertId(id interface{}, change interface{}) error {
	if fc.err != nil {
		return fc.err
	}
	fc.docs[id.(string)] = change.(mongoDoc)
	return nil
}

func (fc *fakeCollection) RemoveId(id interface{}) error {
	delete(fc.docs, id.(string))
	return nil
}

type fakeQuery struct {
	fc *fakeCollection
}

func (fq fakeQuery) All(result interface{}) error {
	out := result.(*[]mongoDoc)
	for _, d := range fq.fc.docs {
		*out = append(*out, d)
	}
	sort.Slice(*out, func(i, j int) bool { return (*out)[i].ID < (*out)[j].ID })
	return nil
}

type MongoSuite struct {
	fc    *fakeCollection
	store *Mongo
}

var _ = Suite(&MongoSuite{})

func (s *MongoSuite) SetUpTest(c *C) {
	s.fc = &fakeCollection{docs: make(map[string]mongoDoc)}
	s.store = NewMongo(s.fc)
}

func (s *MongoSuite) TestSaveThenLoad(c *C) {
	ctx := context.Background()
	c.Assert(s.store.Save(ctx, sampleShops()), IsNil)
	c.Assert(s.fc.docs, HasLen, 2)

	got, err := s.store.Load(ctx)
	c.Assert(err, IsNil)
	c.Assert(got, HasLen, 2)
	c.Assert(got[0].Stock, Equals, 4)
}

func (s *MongoSuite) TestSaveRemovesVanishedShops(c *C) {
	ctx := context.Background()
	c.Assert(s.store.Save(ctx, sampleShops()), IsNil)
	c.Assert(s.store.Save(ctx, sampleShops()[:1]), IsNil)

	c.Assert(s.fc.docs, HasLen, 1)
	_, ok := s.fc.docs["1,64,-3"]
	c.Assert(ok, Equals, true)
}

func (s *MongoSuite) TestSaveError(c *C) {
	s.fc.err = errors.New("down")
	err := s.store.Save(context.Background(), []shop.Snapshot{sampleShops()[0]})
	c.Assert(err, NotNil)
}
