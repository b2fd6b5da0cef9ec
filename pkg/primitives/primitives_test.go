package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileID_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		fileID   FileID
		expected bool
	}{
		{"Zero FileID is invalid", FileID(0), false},
		{"Non-zero FileID is valid", FileID(12345), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fileID.IsValid())
		})
	}
}

func TestFilepath_HashIsDeterministic(t *testing.T) {
	p1 := Filepath("/data/users.dat")
	p2 := Filepath("/data/users.dat")
	p3 := Filepath("/data/orders.dat")

	assert.Equal(t, p1.Hash(), p2.Hash())
	assert.NotEqual(t, p1.Hash(), p3.Hash())
	assert.Equal(t, p1.Hash().ToTableID(), p1.HashAsTableID())
}

func TestFilepath_MkdirAllCreatesThePathItself(t *testing.T) {
	dir := Filepath(t.TempDir()).Join("nested", "data")
	assert.False(t, dir.Exists())

	assert.NoError(t, dir.MkdirAll(0o750))
	assert.True(t, dir.Exists())

	// already existing is fine
	assert.NoError(t, dir.MkdirAll(0o750))
}

func TestPageID_EqualityAndAccessors(t *testing.T) {
	pid := NewPageID(TableID(7), PageNumber(42))

	assert.Equal(t, TableID(7), pid.TableID())
	assert.Equal(t, PageNumber(42), pid.PageNo())
	assert.True(t, pid.Equals(NewPageID(7, 42)))
	assert.False(t, pid.Equals(NewPageID(7, 43)))
	assert.False(t, pid.Equals(NewPageID(8, 42)))
}

func TestPageID_UsableAsMapKey(t *testing.T) {
	m := map[PageID]int{}
	m[NewPageID(1, 0)] = 10
	m[NewPageID(1, 0)] = 20
	m[NewPageID(1, 1)] = 30

	assert.Len(t, m, 2)
	assert.Equal(t, 20, m[NewPageID(1, 0)])
}

func TestPageID_SerializeRoundTripsHash(t *testing.T) {
	a := NewPageID(3, 9)
	b := NewPageID(3, 9)

	assert.Equal(t, a.Serialize(), b.Serialize())
	assert.Equal(t, a.HashCode(), b.HashCode())
}

func TestTransactionID_Monotonic(t *testing.T) {
	first := NewTransactionID()
	second := NewTransactionID()

	assert.True(t, first.IsValid())
	assert.True(t, first.OlderThan(second))
	assert.False(t, second.OlderThan(first))
	assert.Equal(t, first.ID(), first.StartOrder())
}

func TestTransactionID_ZeroValueInvalid(t *testing.T) {
	var tid TransactionID
	assert.False(t, tid.IsValid())
}

func TestPredicate_String(t *testing.T) {
	tests := []struct {
		p        Predicate
		expected string
	}{
		{Equals, "="},
		{NotEqual, "!="},
		{LessThan, "<"},
		{LessThanOrEqual, "<="},
		{GreaterThan, ">"},
		{GreaterThanOrEqual, ">="},
		{Predicate(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.p.String())
	}
}
