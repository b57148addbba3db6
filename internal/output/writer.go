// Package output writes the final lead array as CRM-importable JSON.
package output

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Write serializes the leads to path as an indented JSON array. An empty
// run still produces a valid empty array.
func Write(path string, leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: marshal leads")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "output: write %s", path)
	}

	zap.L().Info("leads written",
		zap.String("path", path),
		zap.Int("count", len(leads)),
	)
	return nil
}
