package waveform

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
)

// EncodeCSV converts the analog records to physical units and writes them
// to a CSV in streaming fashion.  All records must share a record length;
// the time column is built from the first record's spacing and trigger
// index.
func EncodeCSV(w io.Writer, records ...*Analog) error {
	if len(records) == 0 {
		return nil
	}
	labels := make([]string, len(records)+1)
	labels[0] = "time"
	data := make([][]float64, len(records))
	for i, rec := range records {
		labels[i+1] = rec.SourceName
		data[i] = rec.Physical()
	}
	times := records[0].XValues()

	w2 := bufio.NewWriter(w)
	w3 := csv.NewWriter(w2)
	err := w3.Write(labels)
	if err != nil {
		return err
	}
	row := make([]string, len(labels))
	for i := 0; i < len(times); i++ {
		row[0] = strconv.FormatFloat(times[i], 'G', -1, 64)
		for j := 0; j < len(data); j++ {
			row[j+1] = strconv.FormatFloat(data[j][i], 'G', -1, 64)
		}
		err := w3.Write(row)
		if err != nil {
			return err
		}
	}
	w3.Flush()
	return w2.Flush()
}
