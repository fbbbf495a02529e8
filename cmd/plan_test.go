package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/planner"
)

func TestParseAvoid(t *testing.T) {
	got := parseAvoid([]string{"西湖; 之江 ;滨江", " ; ", "学林街;文一西路"})
	assert.Equal(t, [][]string{{"西湖", "之江", "滨江"}, {"学林街", "文一西路"}}, got)
	assert.Nil(t, parseAvoid(nil))
}

func TestWritePlanText(t *testing.T) {
	plan := &model.Plan{
		Routes: []model.RouteSummary{{
			Direction:           model.North,
			Origin:              model.CanonicalFacility{POIRecord: model.POIRecord{Name: "市人民医院"}},
			DestinationAddress:  "杭州电子科技大学",
			TotalDistanceMeters: 52000,
			Steps:               []model.RouteStep{{Index: 2, Instruction: "go", DistanceMeters: 3000}},
		}},
		Errors: map[string]string{model.South: "amap: request failed: DAILY_QUERY_OVER_LIMIT"},
	}

	var buf bytes.Buffer
	require.NoError(t, writePlanText(&buf, plan))
	out := buf.String()
	assert.Contains(t, out, "[north] 市人民医院 -> 杭州电子科技大学: about 52000 m in total.")
	assert.Contains(t, out, "step 2: go (unnamed road, about 3000 m)")
	assert.Contains(t, out, "[south] error: amap: request failed: DAILY_QUERY_OVER_LIMIT")
}

func TestWritePlanText_NoPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePlanText(&buf, &model.Plan{Errors: map[string]string{planner.KeyGeocode: "no match"}}))
	assert.Equal(t, "no plan: no match\n", buf.String())
}

func TestEncodeJSON_KeepsCJK(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeJSON(&buf, map[string]string{"name": "市人民医院<东院>"}))
	assert.Contains(t, buf.String(), "市人民医院<东院>")
}
