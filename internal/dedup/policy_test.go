package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rescue-router/internal/model"
)

func km(v float64) *float64 {
	m := v * 1000
	return &m
}

func named(name string, distKM float64) model.POIRecord {
	return model.POIRecord{Name: name, DistanceMeters: km(distKM)}
}

func at(name string, lon, lat float64) model.POIRecord {
	return model.POIRecord{Name: name, Location: &model.GeoPoint{Lon: lon, Lat: lat}}
}

func TestPolicy_Groups_SubUnit(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("市人民医院", 0.3),
		named("市人民医院住院部", 0.4),
		named("市第二人民医院", 1.8),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "市人民医院", groups[0].Canonical)
	assert.Equal(t, []string{"市人民医院", "市人民医院住院部"}, groups[0].Members)
	assert.Equal(t, []string{"市人民医院住院部"}, groups[0].Duplicates())
}

func TestPolicy_Groups_TooFar(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("市人民医院", 0.3),
		named("市人民医院住院部", 2.5),
	})
	assert.Empty(t, groups)
}

func TestPolicy_Groups_UsesLocations(t *testing.T) {
	// 0.01 degrees of latitude is about 1.1 km.
	near := DefaultPolicy().Groups([]model.POIRecord{
		at("市人民医院", 120.0, 30.0),
		at("市人民医院门诊楼", 120.0, 30.01),
	})
	require.Len(t, near, 1)

	far := DefaultPolicy().Groups([]model.POIRecord{
		at("市人民医院", 120.0, 30.0),
		at("市人民医院门诊楼", 120.0, 30.03),
	})
	assert.Empty(t, far)
}

func TestPolicy_Groups_LocatedNameNeedsLocatedPartner(t *testing.T) {
	// 2.2 km north and 2.4 km south of the center: the distance difference is
	// 0.2 km but the records are 4.6 km apart.
	north := at("市人民医院", 120.0, 30.02)
	north.DistanceMeters = km(2.2)
	south := named("市人民医院住院部", 2.4)

	assert.Empty(t, DefaultPolicy().Groups([]model.POIRecord{north, south}))

	southAt := at("市人民医院住院部", 120.0, 30.021)
	southAt.DistanceMeters = km(2.3)
	groups := DefaultPolicy().Groups([]model.POIRecord{north, south, southAt})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"市人民医院住院部"}, groups[0].Duplicates())
}

func TestPolicy_Groups_EnglishBranchOffice(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("Acme Bank", 0.3),
		named("Acme Bank Branch Office", 0.4),
		named("Acme Bank Branch", 0.5),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Acme Bank", groups[0].Canonical)
	assert.Equal(t, []string{"Acme Bank", "Acme Bank Branch Office"}, groups[0].Members)
}

func TestPolicy_Groups_UnknownDistance(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		{Name: "市人民医院"},
		{Name: "市人民医院住院部"},
	})
	assert.Empty(t, groups)
}

func TestPolicy_Groups_QualifiersNeverMerge(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("浙江大学", 0.1),
		named("浙江大学东校区", 0.2),
		named("浙江大学国际校区", 0.3),
		named("星巴克", 0.1),
		named("星巴克西湖店", 0.2),
		named("文一社区", 0.4),
		named("文二社区", 0.5),
	})
	assert.Empty(t, groups)
}

func TestPolicy_Groups_CampusSubUnit(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("浙江大学紫金港校区", 0.1),
		named("浙江大学紫金港校区图书馆", 0.2),
		named("浙江大学", 0.3),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "浙江大学紫金港校区", groups[0].Canonical)
}

func TestPolicy_Groups_Transitive(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("市人民医院门诊楼", 0.0),
		named("市人民医院住院楼", 1.5),
		named("市人民医院", 3.0),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "市人民医院", groups[0].Canonical)
	assert.ElementsMatch(t, []string{"市人民医院门诊楼", "市人民医院住院楼"}, groups[0].Duplicates())
}

func TestPolicy_Canonical_ShortestWhenAllSuffixed(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("市人民医院住院部", 0.1),
		named("市人民医院楼", 0.2),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "市人民医院楼", groups[0].Canonical)
}

func TestPolicy_Groups_FullWidthVariant(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("ABC医院", 0.1),
		named("ＡＢＣ医院", 0.1),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "ABC医院", groups[0].Canonical)
}

func TestPolicy_RepeatedNameIsOneEntry(t *testing.T) {
	groups := DefaultPolicy().Groups([]model.POIRecord{
		named("市人民医院", 0.3),
		named("市人民医院", 0.3),
	})
	assert.Empty(t, groups)
}
