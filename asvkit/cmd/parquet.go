package cmd

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

func mergedSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, 3+taxRankCount)
	fields = append(fields,
		arrow.Field{Name: "ASV_ID", Type: arrow.BinaryTypes.String},
		arrow.Field{Name: "Abundance", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "Taxonomy", Type: arrow.BinaryTypes.String},
	)
	for _, rank := range taxRanks {
		fields = append(fields, arrow.Field{Name: rank, Type: arrow.BinaryTypes.String})
	}
	return arrow.NewSchema(fields, nil)
}

// writeMergedParquet writes the merged table as a snappy-compressed parquet
// file, one column per output field.
func writeMergedParquet(rows []mergedRow, path string) error {
	schema := mergedSchema()
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	idBuilder := builder.Field(0).(*array.StringBuilder)
	abundanceBuilder := builder.Field(1).(*array.Float64Builder)
	taxonomyBuilder := builder.Field(2).(*array.StringBuilder)
	rankBuilders := make([]*array.StringBuilder, taxRankCount)
	for i := range rankBuilders {
		rankBuilders[i] = builder.Field(3 + i).(*array.StringBuilder)
	}

	for _, row := range rows {
		idBuilder.Append(row.ASVID)
		abundanceBuilder.Append(row.Abundance)
		taxonomyBuilder.Append(row.Taxonomy)
		for i, rb := range rankBuilders {
			rb.Append(row.Ranks[i])
		}
	}
	record := builder.NewRecord()
	defer record.Release()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		_ = out.Close()
	}()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	writer, err := pqarrow.NewFileWriter(schema, out, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
