package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-pipeline/internal/dataset"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
	ctx     context.Context
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "duckdb-writer-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
	suite.ctx = context.Background()
}

func (suite *DuckDBWriterTestSuite) TearDownSuite() {
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func testBar(i int) series.Bar {
	price := 100.25 + float64(i)

	return series.Bar{
		Symbol: "BTCUSDT",
		Time:   time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
		Open:   price - 0.5,
		High:   price + 1.5,
		Low:    price - 1.5,
		Close:  price,
		Volume: 1000.5 + float64(i),
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "new.parquet")
	writer := NewDuckDBWriter(outputPath, nil)

	suite.NotNil(writer)
	suite.Equal(outputPath, writer.GetOutputPath())

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"), nil)

	err := writer.Write(testBar(0))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFinalizeWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init_finalize.parquet"), nil)

	_, err := writer.Finalize()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}

func (suite *DuckDBWriterTestSuite) TestLifecycleRoundTrip() {
	outputPath := filepath.Join(suite.tempDir, "bars.parquet")
	writer := NewDuckDBWriter(outputPath, nil)

	suite.Require().NoError(writer.Initialize())

	for i := 0; i < 10; i++ {
		suite.Require().NoError(writer.Write(testBar(i)))
	}

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)
	suite.Require().NoError(writer.Close())

	loader, err := dataset.NewLoader(":memory:", nil)
	suite.Require().NoError(err)

	defer loader.Close()

	suite.Require().NoError(loader.LoadParquet(suite.ctx, path))

	count, err := loader.Count(suite.ctx, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(10, count)

	got, err := loader.Series(suite.ctx, "BTCUSDT", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Equal(10, got.Len())

	for i := 0; i < 10; i++ {
		want := testBar(i)
		suite.True(got.Time[i].Equal(want.Time), "bar %d time", i)
		suite.Equal(want.Close, got.Close[i], "bar %d close", i)
		suite.Equal(want.Volume, got.Volume[i], "bar %d volume", i)
	}
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalizeRollsBack() {
	outputPath := filepath.Join(suite.tempDir, "rolled_back.parquet")
	writer := NewDuckDBWriter(outputPath, nil)

	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(testBar(0)))
	suite.Require().NoError(writer.Close())

	_, err := os.Stat(outputPath)
	suite.True(os.IsNotExist(err), "no file should exist when Finalize was never called")
}

func (suite *DuckDBWriterTestSuite) TestCloseIsIdempotent() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "idempotent.parquet"), nil)

	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Close())
	suite.Require().NoError(writer.Close())
}
