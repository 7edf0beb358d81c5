package pkg

import (
	"io"

	"github.com/provide-io/chisel/pkg/chisel"
	"github.com/provide-io/chisel/pkg/logging"
)

// InspectProduct prints a savings report for the product bundle at
// productPath to out. Warnings are logged to the same stream.
func InspectProduct(productPath string, out io.Writer, logLevel string) (chisel.Savings, error) {
	level, source := logging.ResolveLogLevel(logLevel)
	logger := logging.NewLogger("chisel", level, out)
	logger.Debug("Log level", "level", level, "source", source)

	return chisel.NewInspector(out, logger).Run(productPath)
}
