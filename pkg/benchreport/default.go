package benchreport

import (
	_ "embed"

	"github.com/samber/lo"
)

//go:embed default_dataset.yaml
var defaultDatasetYAML []byte

// Default returns the built-in measurement run used when no dataset file is given.
func Default() *Dataset {
	return lo.Must(Parse(defaultDatasetYAML))
}
