package render

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"p9e.in/towerpro/models"
	"p9e.in/towerpro/utils"
)

// SiteFeatures maps every report with a valid site location to a point
// feature. Reports without coordinates are skipped.
func SiteFeatures(reports []models.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	var points []orb.Point
	for _, r := range reports {
		pt, ok := utils.LocationPoint(r.SiteInfo.Latitude, r.SiteInfo.Longitude)
		if !ok {
			continue
		}
		points = append(points, pt)

		feat := geojson.NewFeature(pt)
		feat.ID = r.ID
		feat.Properties["reportId"] = r.ID
		feat.Properties["facilityName"] = r.SiteInfo.FacilityName
		feat.Properties["status"] = string(r.Status)
		feat.Properties["address"] = AddressLine(r.SiteInfo)
		feat.Properties["reportDate"] = reportDate(r)
		fc.Append(feat)
	}
	if b, ok := utils.Bounds(points); ok {
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}
