package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blmreader/pkg/blm"
)

const testBLM = "#HEADER#\n" +
	"Version : 3\n" +
	"EOF : '^'\n" +
	"EOR : '~'\n" +
	"#DEFINITION#\n" +
	"AGENT_REF^ADDRESS_1^PRICE^~\n" +
	"#DATA#\n" +
	"1_001^Fox Cottage^250000^~\n" +
	"1_002^Mill House^325000^~\n" +
	"1_003^Rose Cottage^95000^~\n" +
	"1_004^The Old Forge^410000^~\n" +
	"#END#\n"

func newTestParser(t *testing.T) *blm.Parser {
	t.Helper()
	f, err := blm.NewFile(strings.NewReader(testBLM))
	require.NoError(t, err)
	return blm.NewParser(f)
}

func collect(t *testing.T, it QueryIterator) []int {
	t.Helper()
	var indexes []int
	for it.Next() {
		indexes = append(indexes, it.Result().Index)
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
	return indexes
}

func TestScanEngine_Execute(t *testing.T) {
	engine := NewScanEngine(nil)
	parser := newTestParser(t)
	ctx := context.Background()

	tests := []struct {
		query FieldQuery
		want  []int
	}{
		{FieldQuery{Field: "PRICE", Operator: ">", Value: "300000"}, []int{1, 3}},
		{FieldQuery{Field: "PRICE", Operator: "<", Value: "100000"}, []int{2}},
		{FieldQuery{Field: "ADDRESS_1", Operator: "~", Value: "Cottage"}, []int{0, 2}},
		{FieldQuery{Field: "AGENT_REF", Operator: "=", Value: "1_004"}, []int{3}},
		{FieldQuery{Field: "AGENT_REF", Operator: "=", Value: "9_999"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query.String(), func(t *testing.T) {
			it, err := engine.Execute(ctx, parser, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, collect(t, it))
		})
	}
}

func TestScanEngine_ResultRow(t *testing.T) {
	engine := NewScanEngine(nil)
	it, err := engine.Execute(context.Background(), newTestParser(t), FieldQuery{Field: "PRICE", Operator: "=", Value: "325000"})
	require.NoError(t, err)

	require.True(t, it.Next())
	result := it.Result()
	assert.Equal(t, 1, result.Index)
	assert.Equal(t, "Mill House", result.Row["ADDRESS_1"])
	assert.Equal(t, "1_002", result.Row["AGENT_REF"])
	assert.False(t, it.Next())
}

func TestScanEngine_ExecuteRange(t *testing.T) {
	engine := NewScanEngine(nil)
	parser := newTestParser(t)

	it, err := engine.ExecuteRange(context.Background(), parser,
		FieldQuery{Field: "PRICE", Operator: ">=", Value: "250000"},
		FieldQuery{Field: "PRICE", Operator: "<=", Value: "325000"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, collect(t, it))

	_, err = engine.ExecuteRange(context.Background(), parser,
		FieldQuery{Field: "PRICE", Operator: ">=", Value: "1"},
		FieldQuery{Field: "AGENT_REF", Operator: "<=", Value: "2"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "range query fields must match")
}

func TestScanEngine_Errors(t *testing.T) {
	engine := NewScanEngine(nil)
	parser := newTestParser(t)

	_, err := engine.Execute(context.Background(), parser, FieldQuery{Field: "PRICE", Operator: "??", Value: "1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")

	_, err = engine.Execute(context.Background(), parser, FieldQuery{Field: "POSTCODE", Operator: "=", Value: "x"})
	assert.ErrorIs(t, err, blm.ErrUnknownField)
}

func TestScanEngine_ContextCanceled(t *testing.T) {
	engine := NewScanEngine(nil)
	ctx, cancel := context.WithCancel(context.Background())

	it, err := engine.Execute(ctx, newTestParser(t), FieldQuery{Field: "PRICE", Operator: ">", Value: "0"})
	require.NoError(t, err)
	require.True(t, it.Next())

	cancel()
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), context.Canceled)
}

func TestScanEngine_CloseStopsIteration(t *testing.T) {
	engine := NewScanEngine(nil)
	it, err := engine.Execute(context.Background(), newTestParser(t), FieldQuery{Field: "PRICE", Operator: ">", Value: "0"})
	require.NoError(t, err)

	require.True(t, it.Next())
	require.NoError(t, it.Close())
	assert.False(t, it.Next())
}

func TestScanEngine_ReadErrorStopsIteration(t *testing.T) {
	engine := NewScanEngine(nil)
	parser := newTestParser(t)

	it, err := engine.Execute(context.Background(), parser, FieldQuery{Field: "PRICE", Operator: ">", Value: "0"})
	require.NoError(t, err)
	require.True(t, it.Next())

	require.NoError(t, parser.File().Close())
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), blm.ErrClosed)
}
