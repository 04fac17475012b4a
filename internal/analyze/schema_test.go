package analyze

import (
	"encoding/json"
	"testing"
)

func TestValidateReportJSON_BuiltReportPasses(t *testing.T) {
	report := BuildReport(sampleBlocks(), Options{Source: "doc.pdf", Now: fixedClock})
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateReportJSON(raw); err != nil {
		t.Errorf("built report failed schema validation: %v", err)
	}
}

func TestValidateReportJSON_EmptyReportPasses(t *testing.T) {
	raw, err := json.Marshal(BuildReport(nil, Options{Source: "empty", Now: fixedClock}))
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateReportJSON(raw); err != nil {
		t.Errorf("empty report failed schema validation: %v", err)
	}
}

func TestValidateReportJSON_RejectsWrongShape(t *testing.T) {
	if err := ValidateReportJSON([]byte(`{"document": {}}`)); err == nil {
		t.Error("expected validation error for missing sections")
	}
	if err := ValidateReportJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid json")
	}
}
