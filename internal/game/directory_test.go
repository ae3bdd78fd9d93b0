package game

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(defaultCapacity int) *Directory {
	return NewDirectory(clockwork.NewFakeClock(), defaultCapacity)
}

func TestDirectoryCreatesRoomOnFirstJoin(t *testing.T) {
	d := newTestDirectory(4)
	assert.Equal(t, 0, d.Len())

	p := newFakePeer("c1")
	room := d.Join(p, "AB12", "Hana", 0, false)
	require.NotNil(t, room)

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, "AB12", room.Code())
	got, ok := d.Lookup("AB12")
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestDirectoryReusesRoomByCode(t *testing.T) {
	d := newTestDirectory(4)

	r1 := d.Join(newFakePeer("c1"), "AB12", "Hana", 0, false)
	r2 := d.Join(newFakePeer("c2"), "AB12", "Ghada", 0, false)

	require.NotNil(t, r1)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 2, r1.Size())
}

func TestDirectoryRemovesRoomWhenLastMemberLeaves(t *testing.T) {
	d := newTestDirectory(4)
	p := newFakePeer("c1")
	room := d.Join(p, "AB12", "Hana", 0, false)
	require.NotNil(t, room)

	d.Leave(room, p)

	assert.Equal(t, 0, d.Len())
	_, ok := d.Lookup("AB12")
	assert.False(t, ok)
}

func TestDirectoryKeepsRoomWhileOccupied(t *testing.T) {
	d := newTestDirectory(4)
	h := newFakePeer("c1")
	g := newFakePeer("c2")
	room := d.Join(h, "AB12", "Hana", 0, false)
	d.Join(g, "AB12", "Ghada", 0, false)

	d.Leave(room, h)

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 1, room.Size())
}

func TestDirectoryRejoinAfterEmptyGetsFreshRoom(t *testing.T) {
	d := newTestDirectory(4)
	p := newFakePeer("c1")
	room := d.Join(p, "AB12", "Hana", 2, true)
	require.NotNil(t, room)
	d.Leave(room, p)

	// the replacement room starts from defaults again
	p2 := newFakePeer("c2")
	fresh := d.Join(p2, "AB12", "Paula", 0, false)
	require.NotNil(t, fresh)
	assert.NotSame(t, room, fresh)

	joined := p2.lastEvent(t, "joined")
	assert.EqualValues(t, 4, joined["max"])
	assert.Equal(t, "host", joined["role"])
}

func TestDirectoryJoinFullRoomReturnsNil(t *testing.T) {
	d := newTestDirectory(4)
	d.Join(newFakePeer("c1"), "AB12", "Hana", 2, true)
	d.Join(newFakePeer("c2"), "AB12", "Ghada", 0, false)

	room := d.Join(newFakePeer("c3"), "AB12", "Xena", 0, false)

	assert.Nil(t, room)
	live, ok := d.Lookup("AB12")
	require.True(t, ok)
	assert.Equal(t, 2, live.Size())
}

func TestDirectoryLeaveNonMemberIsNoop(t *testing.T) {
	d := newTestDirectory(4)
	p := newFakePeer("c1")
	room := d.Join(p, "AB12", "Hana", 0, false)

	d.Leave(room, newFakePeer("stranger"))

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 1, room.Size())
}

func TestDirectoryIsolatesRoomsByCode(t *testing.T) {
	d := newTestDirectory(4)
	r1 := d.Join(newFakePeer("c1"), "AB12", "Hana", 0, false)
	r2 := d.Join(newFakePeer("c2"), "CD34", "Ghada", 0, false)

	assert.NotSame(t, r1, r2)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 1, r1.Size())
	assert.Equal(t, 1, r2.Size())
}
