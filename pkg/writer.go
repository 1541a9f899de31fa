package evb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// Rows converted per batch when streaming the columns out to parquet.
const writeBatchRows = 4096

// eventRow is the parquet schema, one field per output column. Field order
// matches the schema order of ColumnField.
type eventRow struct {
	AnodeFrontEnergy      float64 `parquet:"AnodeFrontEnergy"`
	AnodeFrontShort       float64 `parquet:"AnodeFrontShort"`
	AnodeFrontTime        float64 `parquet:"AnodeFrontTime"`
	AnodeBackEnergy       float64 `parquet:"AnodeBackEnergy"`
	AnodeBackShort        float64 `parquet:"AnodeBackShort"`
	AnodeBackTime         float64 `parquet:"AnodeBackTime"`
	ScintLeftEnergy       float64 `parquet:"ScintLeftEnergy"`
	ScintLeftShort        float64 `parquet:"ScintLeftShort"`
	ScintLeftTime         float64 `parquet:"ScintLeftTime"`
	ScintRightEnergy      float64 `parquet:"ScintRightEnergy"`
	ScintRightShort       float64 `parquet:"ScintRightShort"`
	ScintRightTime        float64 `parquet:"ScintRightTime"`
	CathodeEnergy         float64 `parquet:"CathodeEnergy"`
	CathodeShort          float64 `parquet:"CathodeShort"`
	CathodeTime           float64 `parquet:"CathodeTime"`
	DelayFrontLeftEnergy  float64 `parquet:"DelayFrontLeftEnergy"`
	DelayFrontLeftShort   float64 `parquet:"DelayFrontLeftShort"`
	DelayFrontLeftTime    float64 `parquet:"DelayFrontLeftTime"`
	DelayFrontRightEnergy float64 `parquet:"DelayFrontRightEnergy"`
	DelayFrontRightShort  float64 `parquet:"DelayFrontRightShort"`
	DelayFrontRightTime   float64 `parquet:"DelayFrontRightTime"`
	DelayBackLeftEnergy   float64 `parquet:"DelayBackLeftEnergy"`
	DelayBackLeftShort    float64 `parquet:"DelayBackLeftShort"`
	DelayBackLeftTime     float64 `parquet:"DelayBackLeftTime"`
	DelayBackRightEnergy  float64 `parquet:"DelayBackRightEnergy"`
	DelayBackRightShort   float64 `parquet:"DelayBackRightShort"`
	DelayBackRightTime    float64 `parquet:"DelayBackRightTime"`
	X1                    float64 `parquet:"X1"`
	X2                    float64 `parquet:"X2"`
	Xavg                  float64 `parquet:"Xavg"`
	Theta                 float64 `parquet:"Theta"`
}

func (d *ChannelData) rowAt(i int) eventRow {
	return eventRow{
		AnodeFrontEnergy:      d.fields[ColAnodeFrontEnergy][i],
		AnodeFrontShort:       d.fields[ColAnodeFrontShort][i],
		AnodeFrontTime:        d.fields[ColAnodeFrontTime][i],
		AnodeBackEnergy:       d.fields[ColAnodeBackEnergy][i],
		AnodeBackShort:        d.fields[ColAnodeBackShort][i],
		AnodeBackTime:         d.fields[ColAnodeBackTime][i],
		ScintLeftEnergy:       d.fields[ColScintLeftEnergy][i],
		ScintLeftShort:        d.fields[ColScintLeftShort][i],
		ScintLeftTime:         d.fields[ColScintLeftTime][i],
		ScintRightEnergy:      d.fields[ColScintRightEnergy][i],
		ScintRightShort:       d.fields[ColScintRightShort][i],
		ScintRightTime:        d.fields[ColScintRightTime][i],
		CathodeEnergy:         d.fields[ColCathodeEnergy][i],
		CathodeShort:          d.fields[ColCathodeShort][i],
		CathodeTime:           d.fields[ColCathodeTime][i],
		DelayFrontLeftEnergy:  d.fields[ColDelayFrontLeftEnergy][i],
		DelayFrontLeftShort:   d.fields[ColDelayFrontLeftShort][i],
		DelayFrontLeftTime:    d.fields[ColDelayFrontLeftTime][i],
		DelayFrontRightEnergy: d.fields[ColDelayFrontRightEnergy][i],
		DelayFrontRightShort:  d.fields[ColDelayFrontRightShort][i],
		DelayFrontRightTime:   d.fields[ColDelayFrontRightTime][i],
		DelayBackLeftEnergy:   d.fields[ColDelayBackLeftEnergy][i],
		DelayBackLeftShort:    d.fields[ColDelayBackLeftShort][i],
		DelayBackLeftTime:     d.fields[ColDelayBackLeftTime][i],
		DelayBackRightEnergy:  d.fields[ColDelayBackRightEnergy][i],
		DelayBackRightShort:   d.fields[ColDelayBackRightShort][i],
		DelayBackRightTime:    d.fields[ColDelayBackRightTime][i],
		X1:                    d.fields[ColX1][i],
		X2:                    d.fields[ColX2][i],
		Xavg:                  d.fields[ColXavg][i],
		Theta:                 d.fields[ColTheta][i],
	}
}

// WriteDataFrame writes the accumulated columns to a parquet file, streaming
// rows in bounded batches.
func WriteDataFrame(data *ChannelData, path string) error {
	logger.Info(fmt.Sprintf("writing dataframe to disk at %s", path), "writer")

	if err := data.checkAligned(); err != nil {
		return &ErrWrite{Filename: path, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return &ErrWrite{Filename: path, Err: err}
	}

	writer := parquet.NewGenericWriter[eventRow](file)
	batch := make([]eventRow, 0, writeBatchRows)
	for i := 0; i < data.Rows(); i++ {
		batch = append(batch, data.rowAt(i))
		if len(batch) == writeBatchRows {
			if _, err := writer.Write(batch); err != nil {
				file.Close()
				return &ErrWrite{Filename: path, Err: err}
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := writer.Write(batch); err != nil {
			file.Close()
			return &ErrWrite{Filename: path, Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return &ErrWrite{Filename: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &ErrWrite{Filename: path, Err: err}
	}
	return nil
}

// WriteDataFrameFragment writes one size-bounded fragment of a run's table.
func WriteDataFrameFragment(data *ChannelData, outDir string, runNumber, fragNumber int) error {
	path := filepath.Join(outDir, fmt.Sprintf("run_%d_%d.parquet", runNumber, fragNumber))
	return WriteDataFrame(data, path)
}
