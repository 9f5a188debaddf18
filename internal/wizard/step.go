package wizard

import "strings"

// Step is one closed, ordered phase of the generation wizard.
type Step int

const (
	StepUnknown Step = iota
	StepParameters
	StepGenerateCompetences
	StepEditCompetences
	StepGenerateCV
	StepEditCV
	StepExport
)

// Steps lists the wizard phases in order.
var Steps = [...]Step{
	StepParameters,
	StepGenerateCompetences,
	StepEditCompetences,
	StepGenerateCV,
	StepEditCV,
	StepExport,
}

var stepNames = map[Step]string{
	StepParameters:          "parameters",
	StepGenerateCompetences: "competences.generate",
	StepEditCompetences:     "competences.edit",
	StepGenerateCV:          "cv.generate",
	StepEditCV:              "cv.edit",
	StepExport:              "export",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is a member of the closed step set.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// ParseStep canonicalizes a step identifier to the enum. Identifiers may
// arrive dot-delimited ("competences.generate") or path-like
// ("/competences/generate"); both forms map to the same step. Unrecognized
// identifiers return StepUnknown and false.
func ParseStep(raw string) (Step, bool) {
	canonical := strings.ToLower(strings.TrimSpace(raw))
	canonical = strings.Trim(canonical, "/")
	canonical = strings.ReplaceAll(canonical, "/", ".")

	for step, name := range stepNames {
		if canonical == name {
			return step, true
		}
	}
	return StepUnknown, false
}
