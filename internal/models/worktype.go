package models

import (
	"encoding/json"
	"fmt"
)

// WorkType classifies the nature of a time entry. The set is closed and the
// string names are the storage and filter representation, so they must stay
// stable.
type WorkType int

const (
	WorkTypeMAST WorkType = iota
	WorkTypeBttSupport
	WorkTypeTraining
	WorkTypeTechnicalSupport
	WorkTypeVMast
	WorkTypeTranscribe
	WorkTypeQualityAssurance
	WorkTypeIhadiSoftwareDevelopment
	WorkTypeSpecialAssignment
	WorkTypeOther
)

var workTypeNames = map[WorkType]string{
	WorkTypeMAST:                     "MAST",
	WorkTypeBttSupport:               "BttSupport",
	WorkTypeTraining:                 "Training",
	WorkTypeTechnicalSupport:         "TechnicalSupport",
	WorkTypeVMast:                    "VMast",
	WorkTypeTranscribe:               "Transcribe",
	WorkTypeQualityAssurance:         "QualityAssurance",
	WorkTypeIhadiSoftwareDevelopment: "IhadiSoftwareDevelopment",
	WorkTypeSpecialAssignment:        "SpecialAssignment",
	WorkTypeOther:                    "Other",
}

var workTypeValues = func() map[string]WorkType {
	m := make(map[string]WorkType, len(workTypeNames))
	for wt, name := range workTypeNames {
		m[name] = wt
	}
	return m
}()

// String returns the stable name of the work type.
func (wt WorkType) String() string {
	if name, ok := workTypeNames[wt]; ok {
		return name
	}
	return fmt.Sprintf("WorkType(%d)", int(wt))
}

// ParseWorkType maps a stable name back to its work type.
func ParseWorkType(name string) (WorkType, error) {
	if wt, ok := workTypeValues[name]; ok {
		return wt, nil
	}
	return 0, fmt.Errorf("unknown work type %q", name)
}

// WorkTypeNames lists every valid name, in declaration order.
func WorkTypeNames() []string {
	out := make([]string, 0, len(workTypeNames))
	for wt := WorkTypeMAST; wt <= WorkTypeOther; wt++ {
		out = append(out, workTypeNames[wt])
	}
	return out
}

func (wt WorkType) MarshalJSON() ([]byte, error) {
	name, ok := workTypeNames[wt]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown work type %d", int(wt))
	}
	return json.Marshal(name)
}

func (wt *WorkType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseWorkType(name)
	if err != nil {
		return err
	}
	*wt = parsed
	return nil
}
