package query

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ssargent/blmreader/pkg/blm"
)

// ScanEngine answers field queries by scanning every record of a file
type ScanEngine struct {
	logger log.Logger
}

// NewScanEngine creates a new query engine
func NewScanEngine(logger log.Logger) *ScanEngine {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &ScanEngine{logger: logger}
}

// Execute returns the records whose field satisfies query
func (qe *ScanEngine) Execute(ctx context.Context, parser *blm.Parser, query FieldQuery) (QueryIterator, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	if err := checkField(parser, query.Field); err != nil {
		return nil, err
	}
	return qe.scan(ctx, parser, []FieldQuery{query})
}

// ExecuteRange returns the records whose field satisfies both conditions
func (qe *ScanEngine) ExecuteRange(ctx context.Context, parser *blm.Parser, startQuery, endQuery FieldQuery) (QueryIterator, error) {
	if err := startQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start query: %w", err)
	}
	if err := endQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid end query: %w", err)
	}

	if startQuery.Field != endQuery.Field {
		return nil, fmt.Errorf("range query fields must match: %s != %s", startQuery.Field, endQuery.Field)
	}
	if err := checkField(parser, startQuery.Field); err != nil {
		return nil, err
	}
	return qe.scan(ctx, parser, []FieldQuery{startQuery, endQuery})
}

func (qe *ScanEngine) scan(ctx context.Context, parser *blm.Parser, conds []FieldQuery) (QueryIterator, error) {
	if err := parser.File().BuildIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to index records: %w", err)
	}
	count, err := parser.RecordCount()
	if err != nil {
		return nil, err
	}
	level.Debug(qe.logger).Log("msg", "scanning records", "records", count, "query", fmt.Sprint(conds))

	return &scanIterator{
		ctx:     ctx,
		parser:  parser,
		conds:   conds,
		records: parser.File().Records(),
	}, nil
}

func checkField(parser *blm.Parser, field string) error {
	for _, name := range parser.File().Map() {
		if name == field {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", blm.ErrUnknownField, field)
}

// scanIterator walks the records lazily and yields those matching every condition
type scanIterator struct {
	ctx     context.Context
	parser  *blm.Parser
	conds   []FieldQuery
	records blm.RecordIterator
	done    bool
	result  QueryResult
	err     error
}

func (it *scanIterator) Next() bool {
	for it.err == nil && !it.done {
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}

		if !it.records.Next() {
			it.done = true
			if err := it.records.Err(); err != nil {
				it.err = fmt.Errorf("failed to read records: %w", err)
			}
			return false
		}
		i := it.records.Index()
		it.parser.Parse(i, it.records.Record())
		if it.matches() {
			it.result = QueryResult{Index: i, Row: it.parser.Fields()}
			return true
		}
	}
	return false
}

func (it *scanIterator) matches() bool {
	for _, c := range it.conds {
		if !c.Match(it.parser.Query(c.Field)) {
			return false
		}
	}
	return true
}

func (it *scanIterator) Result() QueryResult {
	return it.result
}

func (it *scanIterator) Err() error {
	return it.err
}

func (it *scanIterator) Close() error {
	it.done = true
	return it.records.Close()
}
