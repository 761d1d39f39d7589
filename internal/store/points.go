package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ReadPoints decodes an Arrow IPC file holding one float64 column per driver
// code and returns the points matrix as [simulation][driver] rows ordered by
// drivers. Extra columns are ignored; a missing driver column is an error.
func ReadPoints(ctx context.Context, path string, drivers []string) ([][]float64, error) {
	data, err := readArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodePoints(bytes.NewReader(data), drivers)
}

func decodePoints(r *bytes.Reader, drivers []string) ([][]float64, error) {
	mem := memory.NewGoAllocator()
	rdr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("opening arrow file: %w", err)
	}
	defer rdr.Close()

	schema := rdr.Schema()
	cols := make([]int, len(drivers))
	for i, code := range drivers {
		idx := schema.FieldIndices(code)
		if len(idx) == 0 {
			return nil, fmt.Errorf("no column for driver %q", code)
		}
		if !arrow.TypeEqual(schema.Field(idx[0]).Type, arrow.PrimitiveTypes.Float64) {
			return nil, fmt.Errorf("column %q is %s, want float64", code, schema.Field(idx[0]).Type)
		}
		cols[i] = idx[0]
	}

	var rows [][]float64
	for n := 0; n < rdr.NumRecords(); n++ {
		rec, err := rdr.Record(n)
		if err != nil {
			return nil, fmt.Errorf("reading record batch %d: %w", n, err)
		}
		base := len(rows)
		for j := 0; j < int(rec.NumRows()); j++ {
			rows = append(rows, make([]float64, len(drivers)))
		}
		for i, c := range cols {
			col := rec.Column(c).(*array.Float64)
			for j := 0; j < col.Len(); j++ {
				if col.IsNull(j) {
					return nil, fmt.Errorf("null points for driver %q in simulation %d", drivers[i], base+j)
				}
				rows[base+j][i] = col.Value(j)
			}
		}
	}
	return rows, nil
}

// WritePoints encodes the bundle's points matrix as a single-batch Arrow IPC
// file with one float64 column per driver code. The IPC file footer needs a
// seekable destination.
func WritePoints(w io.WriteSeeker, b *Bundle) error {
	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, b.NumDrivers())
	for i, code := range b.drivers {
		fields[i] = arrow.Field{Name: code, Type: arrow.PrimitiveTypes.Float64}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()
	for i := range fields {
		builder.Field(i).(*array.Float64Builder).AppendValues(b.points[i], nil)
	}
	rec := builder.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing record batch: %w", err)
	}
	return fw.Close()
}
