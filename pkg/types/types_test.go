package types

import (
	"bytes"
	"testing"

	"heapstore/pkg/primitives"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_Size(t *testing.T) {
	tests := []struct {
		name     string
		fieldType Type
		expected uint32
	}{
		{"Int is 4 bytes", IntType, 4},
		{"String is length prefix plus payload", StringType, StringSize + 4},
		{"Decimal is 16 bytes", DecimalType, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fieldType.Size())
		})
	}
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("Int")
	require.True(t, ok)
	assert.Equal(t, IntType, typ)

	typ, ok = ParseType("String")
	require.True(t, ok)
	assert.Equal(t, StringType, typ)

	typ, ok = ParseType("Decimal")
	require.True(t, ok)
	assert.Equal(t, DecimalType, typ)

	_, ok = ParseType("Blob")
	assert.False(t, ok)
}

func TestIntField_SerializeParse(t *testing.T) {
	for _, value := range []int32{0, 1, -1, 2147483647, -2147483648} {
		var buf bytes.Buffer
		require.NoError(t, NewIntField(value).Serialize(&buf))
		assert.Equal(t, int(IntType.Size()), buf.Len())

		parsed, err := ParseField(&buf, IntType)
		require.NoError(t, err)
		assert.True(t, NewIntField(value).Equals(parsed))
	}
}

func TestIntField_SerializedBigEndian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIntField(1).Serialize(&buf))
	assert.Equal(t, []byte{0, 0, 0, 1}, buf.Bytes())
}

func TestStringField_SerializeParse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStringField("hello").Serialize(&buf))
	assert.Equal(t, int(StringType.Size()), buf.Len())

	parsed, err := ParseField(&buf, StringType)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed.String())
}

func TestStringField_TruncatesLongValues(t *testing.T) {
	long := make([]byte, StringSize+50)
	for i := range long {
		long[i] = 'a'
	}

	f := NewStringField(string(long))
	assert.Len(t, f.Value, StringSize)
}

func TestStringField_ParseRejectsBadLength(t *testing.T) {
	raw := make([]byte, StringType.Size())
	raw[0] = 0xFF // length far beyond StringSize

	_, err := ParseField(bytes.NewReader(raw), StringType)
	assert.Error(t, err)
}

func TestDecimalField_SerializeParse(t *testing.T) {
	f, err := NewDecimalFieldFromString("12.50")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	assert.Equal(t, int(DecimalType.Size()), buf.Len())

	parsed, err := ParseField(&buf, DecimalType)
	require.NoError(t, err)
	assert.True(t, f.Equals(parsed))
	assert.Equal(t, "12.5", parsed.String())
}

func TestDecimalField_RejectsOversizedCoefficient(t *testing.T) {
	huge := decimal.RequireFromString("123456789012345678901234567890")
	_, err := NewDecimalField(huge)
	assert.Error(t, err)
}

func TestField_Compare(t *testing.T) {
	small := NewIntField(5)
	big := NewIntField(10)

	tests := []struct {
		name     string
		op       primitives.Predicate
		lhs, rhs Field
		expected bool
	}{
		{"int equals", primitives.Equals, small, NewIntField(5), true},
		{"int not equal", primitives.NotEqual, small, big, true},
		{"int less than", primitives.LessThan, small, big, true},
		{"int greater than", primitives.GreaterThan, small, big, false},
		{"int ge on equal", primitives.GreaterThanOrEqual, small, NewIntField(5), true},
		{"string less than", primitives.LessThan, NewStringField("abc"), NewStringField("abd"), true},
		{"string equals", primitives.Equals, NewStringField("x"), NewStringField("x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.lhs.Compare(tt.op, tt.rhs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestField_CompareAcrossTypesIsFalse(t *testing.T) {
	got, err := NewIntField(1).Compare(primitives.Equals, NewStringField("1"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDecimalField_Compare(t *testing.T) {
	a, err := NewDecimalFieldFromString("1.5")
	require.NoError(t, err)
	b, err := NewDecimalFieldFromString("1.50")
	require.NoError(t, err)
	c, err := NewDecimalFieldFromString("2")
	require.NoError(t, err)

	eq, err := a.Compare(primitives.Equals, b)
	require.NoError(t, err)
	assert.True(t, eq)

	lt, err := a.Compare(primitives.LessThan, c)
	require.NoError(t, err)
	assert.True(t, lt)
}
