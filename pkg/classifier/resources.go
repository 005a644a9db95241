package classifier

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"brainzone/pkg/config"
	"brainzone/pkg/labels"
)

// Resources are the lookup tables shared read-only by every point of a
// run. They are loaded once, before any point is processed.
type Resources struct {
	// LUT maps atlas codes to raw structure names
	LUT *labels.LUT

	// Names shortens canonical zone labels; nil disables shortening
	Names *labels.Correspondence
}

// LoadResources reads the lookup table variant and the name
// correspondence selected by cfg. Any failure is a setup error and the
// run must not start.
func LoadResources(cfg *config.Config) (*Resources, error) {
	lutPath, err := cfg.LUTPath()
	if err != nil {
		return nil, err
	}

	lut, err := labels.LoadLUT(lutPath)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: load lookup table")
	}

	res := &Resources{LUT: lut}

	full, short := cfg.Resources.FullNames, cfg.Resources.ShortNames
	if full == "" && short == "" {
		zap.L().Info("classifier: no name correspondence configured, zone labels are not shortened")
	} else {
		names, err := labels.LoadCorrespondence(full, short)
		if err != nil {
			return nil, eris.Wrap(err, "classifier: load name correspondence")
		}
		res.Names = names
	}

	zap.L().Info("classifier: resources loaded",
		zap.String("lut", lutPath),
		zap.Int("codes", lut.Len()),
		zap.Int("acronyms", res.Names.Len()),
	)

	return res, nil
}
