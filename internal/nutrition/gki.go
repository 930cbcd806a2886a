package nutrition

import "github.com/vcscsvcscs/nutrifast/internal/apperr"

// mgdlPerMmol converts glucose mg/dL readings to mmol/L
const mgdlPerMmol = 18.016

// GKIResult is a glucose-ketone index reading
type GKIResult struct {
	GlucoseMmol float64 `json:"glucose_mmol"`
	KetonesMmol float64 `json:"ketones_mmol"`
	GKI         float64 `json:"gki"`
	Zone        string  `json:"zone"`
}

// CalculateGKI returns glucose (mmol/L) divided by ketones (mmol/L) with the
// conventional ketosis zone label.
func CalculateGKI(glucose float64, glucoseUnit string, ketonesMmol float64) (*GKIResult, error) {
	var c apperr.Collector
	c.Check(glucose > 0, "glucose must be > 0")
	c.Check(ketonesMmol > 0, "ketones must be > 0")
	c.Check(glucoseUnit == "" || glucoseUnit == "mmol" || glucoseUnit == "mgdl", "glucose_unit must be mmol or mgdl")
	if err := c.Err(); err != nil {
		return nil, err
	}

	glucoseMmol := glucose
	if glucoseUnit == "mgdl" {
		glucoseMmol = glucose / mgdlPerMmol
	}
	gki := glucoseMmol / ketonesMmol

	return &GKIResult{
		GlucoseMmol: glucoseMmol,
		KetonesMmol: ketonesMmol,
		GKI:         gki,
		Zone:        gkiZone(gki),
	}, nil
}

func gkiZone(gki float64) string {
	switch {
	case gki <= 1:
		return "therapeutic"
	case gki <= 3:
		return "high"
	case gki <= 6:
		return "moderate"
	case gki <= 9:
		return "low"
	default:
		return "none"
	}
}
